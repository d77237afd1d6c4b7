package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAdmin                       // Club admin access token required
)

// RouteSecurity maps mux route names to their required security level
var RouteSecurity = map[string]SecurityLevel{
	"healthz":    SecurityPublic,
	"auth.login": SecurityPublic,

	// Directory
	"clubs.list":    SecurityPublic,
	"clubs.get":     SecurityPublic,
	"clubs.events":  SecurityPublic,
	"events.list":   SecurityPublic,
	"events.get":    SecurityPublic,
	"events.create": SecurityAdmin,

	// Forms - applicant side
	"forms.by_owner":     SecurityPublic,
	"forms.status":       SecurityPublic,
	"forms.open":         SecurityPublic,
	"forms.get":          SecurityPublic,
	"forms.prompts":      SecurityPublic,
	"forms.page":         SecurityPublic,
	"submissions.create": SecurityPublic,

	// Forms - admin side
	"forms.create":      SecurityAdmin,
	"forms.close":       SecurityAdmin,
	"submissions.list":  SecurityAdmin,
	"submissions.purge": SecurityAdmin,
	"submissions.csv":   SecurityAdmin,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := RouteSecurity[route]; exists {
		return level
	}
	// Default to highest security for unknown routes
	return SecurityAdmin
}

package domain

import (
	"regexp"
	"strings"
	"time"
)

// Club is both a directory entry and the admin account that owns forms.
type Club struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Description  string `json:"description"`
	LogoImage    string `json:"logo_image"`
	PasswordHash string `json:"-"`
	CreatedOn    string `json:"created_on"`
}

type Event struct {
	ID          int64  `json:"id"`
	ClubID      int64  `json:"club_id"`
	ClubName    string `json:"club_name,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Date        string `json:"date"` // YYYY-MM-DD
	Time        string `json:"time"`
	Venue       string `json:"venue"`
	CreatedOn   string `json:"created_on"`
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9 _.-]+`)

// SafeFileName strips characters that are unsafe in a Content-Disposition
// filename and falls back to "form".
func SafeFileName(name string) string {
	name = unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(name), "")
	if name == "" {
		return "form"
	}
	return name
}

// Validate checks the fields an admin must fill in when creating an event.
func (e *Event) Validate() error {
	ve := &ValidationError{}
	if strings.TrimSpace(e.Name) == "" {
		ve.Add("name", "is required")
	}
	if e.ClubID <= 0 {
		ve.Add("club_id", "must be positive")
	}
	if _, err := time.Parse("2006-01-02", e.Date); err != nil {
		ve.Add("date", "must be YYYY-MM-DD")
	}
	return ve.OrNil()
}

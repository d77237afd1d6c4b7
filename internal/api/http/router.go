package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"clubforms-backend/internal/security"
	"clubforms-backend/internal/service"
)

// Handler serves the JSON API and the applicant form page.
type Handler struct {
	forms       service.FormService
	submissions service.SubmissionService
	exports     service.ExportService
	directory   service.DirectoryService
	auth        service.AuthService
	tokens      security.TokenManager
	baseURL     string
}

func NewHandler(
	forms service.FormService,
	submissions service.SubmissionService,
	exports service.ExportService,
	directory service.DirectoryService,
	auth service.AuthService,
	tokens security.TokenManager,
	baseURL string,
) *Handler {
	return &Handler{
		forms:       forms,
		submissions: submissions,
		exports:     exports,
		directory:   directory,
		auth:        auth,
		tokens:      tokens,
		baseURL:     baseURL,
	}
}

// NewRouter registers every route by name; the auth middleware looks the
// name up in config.RouteSecurity.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, accessLogMiddleware, recoveryMiddleware, h.authMiddleware)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErrorCode(w, http.StatusNotFound, "not_found", "route not found")
	})

	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet).Name("healthz")
	r.HandleFunc("/auth/login", h.login).Methods(http.MethodPost).Name("auth.login")

	r.HandleFunc("/clubs", h.listClubs).Methods(http.MethodGet).Name("clubs.list")
	r.HandleFunc("/clubs/{club_id:[0-9]+}", h.getClub).Methods(http.MethodGet).Name("clubs.get")
	r.HandleFunc("/clubs/{club_id:[0-9]+}/events", h.listClubEvents).Methods(http.MethodGet).Name("clubs.events")
	r.HandleFunc("/events", h.listEvents).Methods(http.MethodGet).Name("events.list")
	r.HandleFunc("/events", h.createEvent).Methods(http.MethodPost).Name("events.create")
	r.HandleFunc("/events/{event_id:[0-9]+}", h.getEvent).Methods(http.MethodGet).Name("events.get")

	r.HandleFunc("/forms", h.createForm).Methods(http.MethodPost).Name("forms.create")
	r.HandleFunc("/forms/open", h.listOpenForms).Methods(http.MethodGet).Name("forms.open")
	r.HandleFunc("/forms/by-owner/{owner_id:[0-9]+}", h.formByOwner).Methods(http.MethodGet).Name("forms.by_owner")
	r.HandleFunc("/forms/status/{owner_id:[0-9]+}", h.formStatus).Methods(http.MethodGet).Name("forms.status")
	r.HandleFunc("/forms/{form_id:[0-9]+}", h.getForm).Methods(http.MethodGet).Name("forms.get")
	r.HandleFunc("/forms/{form_id:[0-9]+}/close", h.closeForm).Methods(http.MethodPost).Name("forms.close")
	r.HandleFunc("/forms/{form_id:[0-9]+}/prompts", h.formPrompts).Methods(http.MethodGet).Name("forms.prompts")
	r.HandleFunc("/forms/{form_id:[0-9]+}/page", h.formPage).Methods(http.MethodGet).Name("forms.page")
	r.HandleFunc("/forms/{form_id:[0-9]+}/submissions", h.submit).Methods(http.MethodPost).Name("submissions.create")
	r.HandleFunc("/forms/{form_id:[0-9]+}/submissions", h.listSubmissions).Methods(http.MethodGet).Name("submissions.list")
	r.HandleFunc("/forms/{form_id:[0-9]+}/submissions", h.purgeSubmissions).Methods(http.MethodDelete).Name("submissions.purge")
	r.HandleFunc("/forms/{form_id:[0-9]+}/export.csv", h.exportCSV).Methods(http.MethodGet).Name("submissions.csv")

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

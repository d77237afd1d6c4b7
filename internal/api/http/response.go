package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"clubforms-backend/internal/domain"
	"clubforms-backend/internal/logger"
	"clubforms-backend/internal/service"
)

// retryAfterSeconds is advertised on 503 responses.
const retryAfterSeconds = "5"

type errorBody struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: code, Message: message})
}

// writeError is the one place where domain errors become HTTP responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation_failed", Message: "Please correct the highlighted fields", Fields: ve.Fields})
	case errors.Is(err, domain.ErrFormClosed):
		writeErrorCode(w, http.StatusConflict, "form_closed", "This form is no longer accepting responses")
	case errors.Is(err, domain.ErrCapacityReached):
		writeErrorCode(w, http.StatusConflict, "capacity_reached", "Registration limit reached")
	case errors.Is(err, domain.ErrStaleSchema):
		writeErrorCode(w, http.StatusConflict, "stale_schema", "The form has changed, reload it and try again")
	case errors.Is(err, domain.ErrNotFound):
		writeErrorCode(w, http.StatusNotFound, "not_found", "Not found")
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, service.ErrInvalidCredentials):
		writeErrorCode(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeErrorCode(w, http.StatusForbidden, "forbidden", "You do not administer this form")
	case errors.Is(err, domain.ErrStorageUnavailable):
		logger.FromContext(r.Context()).Error("Storage unavailable", "path", r.URL.Path, "error", err)
		w.Header().Set("Retry-After", retryAfterSeconds)
		writeErrorCode(w, http.StatusServiceUnavailable, "storage_unavailable", "Temporarily unavailable, please retry")
	default:
		logger.FromContext(r.Context()).Error("Request failed", "path", r.URL.Path, "error", err)
		writeErrorCode(w, http.StatusInternalServerError, "internal", "Internal server error")
	}
}

// badRequest reports a malformed body or parameter as a validation failure.
func badRequest(w http.ResponseWriter, r *http.Request, field, message string) {
	ve := &domain.ValidationError{}
	ve.Add(field, "%s", message)
	writeError(w, r, ve)
}

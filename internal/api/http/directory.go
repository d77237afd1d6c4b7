package http

import (
	"net/http"

	"clubforms-backend/internal/domain"
)

type createEventRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Image       string               `json:"image"`
	Date        string               `json:"date"`
	Time        string               `json:"time"`
	Venue       string               `json:"venue"`
	Fields      []domain.FieldSchema `json:"fields"`
	Capacity    *int                 `json:"capacity"`
}

type createEventResponse struct {
	Event *domain.Event          `json:"event"`
	Form  *domain.FormDefinition `json:"form,omitempty"`
}

func (h *Handler) listClubs(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.directory.ListClubs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clubs)
}

func (h *Handler) getClub(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "club_id")
	if err != nil {
		badRequest(w, r, "club_id", err.Error())
		return
	}
	club, err := h.directory.GetClub(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, club)
}

func (h *Handler) listClubEvents(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "club_id")
	if err != nil {
		badRequest(w, r, "club_id", err.Error())
		return
	}
	events, err := h.directory.ListClubEvents(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.directory.ListEvents(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) getEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "event_id")
	if err != nil {
		badRequest(w, r, "event_id", err.Error())
		return
	}
	event, err := h.directory.GetEvent(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// createEvent files the event under the caller's club and opens its
// registration form when fields are supplied.
func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, "", err.Error())
		return
	}
	clubID, err := clubIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	event := &domain.Event{
		ClubID:      clubID,
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Date:        req.Date,
		Time:        req.Time,
		Venue:       req.Venue,
	}
	def, err := h.directory.CreateEvent(r.Context(), event, req.Fields, req.Capacity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createEventResponse{Event: event, Form: def})
}

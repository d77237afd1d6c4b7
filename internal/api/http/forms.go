package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"clubforms-backend/internal/domain"
	"clubforms-backend/internal/render"
)

const maxBodyBytes = 1 << 20

type createFormRequest struct {
	OwnerKind domain.OwnerKind     `json:"owner_kind"`
	OwnerID   int64                `json:"owner_id"`
	Fields    []domain.FieldSchema `json:"fields"`
	Capacity  *int                 `json:"capacity"`
}

type promptsResponse struct {
	FormID  int64           `json:"form_id"`
	Version int32           `json:"version"`
	Open    bool            `json:"open"`
	Prompts []render.Prompt `json:"prompts"`
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// ownerParamError names the request parameter that could not be parsed.
type ownerParamError struct {
	param string
	err   error
}

func (e *ownerParamError) Error() string { return e.err.Error() }

// ownerFromRequest reads {owner_id} and the kind query parameter, which
// defaults to club.
func ownerFromRequest(r *http.Request) (domain.Owner, error) {
	id, err := pathID(r, "owner_id")
	if err != nil {
		return domain.Owner{}, &ownerParamError{param: "owner_id", err: err}
	}
	kind := domain.OwnerKindClub
	if k := r.URL.Query().Get("kind"); k != "" {
		if kind, err = domain.ParseOwnerKind(k); err != nil {
			return domain.Owner{}, &ownerParamError{param: "kind", err: err}
		}
	}
	return domain.Owner{Kind: kind, ID: id}, nil
}

func ownerBadRequest(w http.ResponseWriter, r *http.Request, err error) {
	param := "kind"
	var pe *ownerParamError
	if errors.As(err, &pe) {
		param = pe.param
	}
	badRequest(w, r, param, err.Error())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	// Numbers stay as their literal text; float64 would round long ids.
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("malformed JSON body: %w", err)
	}
	return nil
}

// adminForm resolves {form_id} and checks that the caller's club owns it.
func (h *Handler) adminForm(w http.ResponseWriter, r *http.Request) (*domain.FormDefinition, bool) {
	formID, err := pathID(r, "form_id")
	if err != nil {
		badRequest(w, r, "form_id", err.Error())
		return nil, false
	}
	clubID, err := clubIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	def, err := h.forms.AuthorizeForm(r.Context(), clubID, formID)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return def, true
}

func (h *Handler) createForm(w http.ResponseWriter, r *http.Request) {
	var req createFormRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, "", err.Error())
		return
	}
	clubID, err := clubIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	owner := domain.Owner{Kind: req.OwnerKind, ID: req.OwnerID}
	if _, err := domain.ParseOwnerKind(string(owner.Kind)); err != nil {
		badRequest(w, r, "owner_kind", "must be club or event")
		return
	}
	if err := h.forms.AuthorizeOwner(r.Context(), clubID, owner); err != nil {
		writeError(w, r, err)
		return
	}

	def, err := h.forms.Create(r.Context(), owner, req.Fields, req.Capacity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, def)
}

func (h *Handler) closeForm(w http.ResponseWriter, r *http.Request) {
	def, ok := h.adminForm(w, r)
	if !ok {
		return
	}
	if err := h.forms.Close(r.Context(), def.ID); err != nil {
		writeError(w, r, err)
		return
	}
	closed, err := h.forms.Get(r.Context(), def.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, closed)
}

func (h *Handler) formByOwner(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerFromRequest(r)
	if err != nil {
		ownerBadRequest(w, r, err)
		return
	}
	def, err := h.forms.FieldsFor(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (h *Handler) formStatus(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerFromRequest(r)
	if err != nil {
		ownerBadRequest(w, r, err)
		return
	}
	state, err := h.forms.Status(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"owner": owner, "status": state})
}

func (h *Handler) listOpenForms(w http.ResponseWriter, r *http.Request) {
	kind := domain.OwnerKindClub
	if k := r.URL.Query().Get("kind"); k != "" {
		var err error
		if kind, err = domain.ParseOwnerKind(k); err != nil {
			badRequest(w, r, "kind", err.Error())
			return
		}
	}
	forms, err := h.forms.ListOpen(r.Context(), kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, forms)
}

func (h *Handler) getForm(w http.ResponseWriter, r *http.Request) {
	formID, err := pathID(r, "form_id")
	if err != nil {
		badRequest(w, r, "form_id", err.Error())
		return
	}
	def, err := h.forms.Get(r.Context(), formID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (h *Handler) formPrompts(w http.ResponseWriter, r *http.Request) {
	formID, err := pathID(r, "form_id")
	if err != nil {
		badRequest(w, r, "form_id", err.Error())
		return
	}
	def, err := h.forms.Get(r.Context(), formID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, promptsResponse{
		FormID:  def.ID,
		Version: def.Version,
		Open:    def.IsOpen(),
		Prompts: render.Prompts(def),
	})
}

func (h *Handler) formPage(w http.ResponseWriter, r *http.Request) {
	formID, err := pathID(r, "form_id")
	if err != nil {
		badRequest(w, r, "form_id", err.Error())
		return
	}
	def, err := h.forms.Get(r.Context(), formID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	title, err := h.directory.OwnerName(r.Context(), def.Owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	description := "Registration form"
	if def.Owner.Kind == domain.OwnerKindClub {
		description = "Recruitment form"
	}
	action := fmt.Sprintf("%s/forms/%d/submissions", h.baseURL, def.ID)

	var buf bytes.Buffer
	if err := render.HTML(&buf, render.NewPage(def, title, description, action)); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

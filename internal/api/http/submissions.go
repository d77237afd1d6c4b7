package http

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
)

// versionField carries the rendered form version in form-encoded posts.
const versionField = "_version"

type submitRequest struct {
	Version int32          `json:"version"`
	Values  map[string]any `json:"values"`
}

// readSubmission accepts either a JSON body or a urlencoded/multipart form
// as posted by the rendered page. Values are reduced to text.
func readSubmission(w http.ResponseWriter, r *http.Request) (int32, map[string]string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req submitRequest
		if err := decodeJSON(w, r, &req); err != nil {
			return 0, nil, err
		}
		values := make(map[string]string, len(req.Values))
		for k, v := range req.Values {
			values[k] = textValue(v)
		}
		return req.Version, values, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil && err != http.ErrNotMultipart {
		return 0, nil, fmt.Errorf("malformed form body: %w", err)
	}
	values := make(map[string]string, len(r.PostForm))
	var version int32
	for k, vs := range r.PostForm {
		if len(vs) == 0 {
			continue
		}
		if k == versionField {
			v, err := strconv.ParseInt(vs[0], 10, 32)
			if err != nil {
				return 0, nil, fmt.Errorf("invalid %s", versionField)
			}
			version = int32(v)
			continue
		}
		values[k] = vs[0]
	}
	return version, values, nil
}

func textValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	formID, err := pathID(r, "form_id")
	if err != nil {
		badRequest(w, r, "form_id", err.Error())
		return
	}
	version, values, err := readSubmission(w, r)
	if err != nil {
		badRequest(w, r, "", err.Error())
		return
	}

	sub, err := h.submissions.Submit(r.Context(), formID, version, values)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *Handler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	def, ok := h.adminForm(w, r)
	if !ok {
		return
	}
	subs, err := h.submissions.ListFor(r.Context(), def.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *Handler) purgeSubmissions(w http.ResponseWriter, r *http.Request) {
	def, ok := h.adminForm(w, r)
	if !ok {
		return
	}
	n, err := h.submissions.Purge(r.Context(), def.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	def, ok := h.adminForm(w, r)
	if !ok {
		return
	}
	filename, data, err := h.exports.CSV(r.Context(), def.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

package http

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubforms-backend/internal/domain"
	"clubforms-backend/internal/events"
	"clubforms-backend/internal/repository/memory"
	"clubforms-backend/internal/security"
	"clubforms-backend/internal/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testServer struct {
	t      *testing.T
	router http.Handler
	auth   service.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	tokens := security.NewTokenManager(testSecret, time.Hour)
	publisher := events.NewNoopPublisher()

	forms := service.NewFormService(store.Clubs, store.Events, store.Forms, publisher)
	directory := service.NewDirectoryService(store.Clubs, store.Events, forms)
	submissions := service.NewSubmissionService(store.Forms, store.Submissions, directory, service.NewNoopEmailService(), publisher)
	exports := service.NewExportService(store.Forms, store.Submissions, directory)
	auth := service.NewAuthService(store.Clubs, tokens)

	h := NewHandler(forms, submissions, exports, directory, auth, tokens, "http://forms.test")
	return &testServer{t: t, router: NewRouter(h), auth: auth}
}

// registerAndLogin creates a club and returns its id and a bearer token.
func (s *testServer) registerAndLogin(name, email string) (int64, string) {
	s.t.Helper()
	club := &domain.Club{Name: name, Email: email}
	require.NoError(s.t, s.auth.RegisterClub(context.Background(), club, "s3cret-pass"))

	rec := s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": "s3cret-pass"})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp loginResponse
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(s.t, resp.Token)
	return club.ID, resp.Token
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) createClubForm(token string, clubID int64, capacity *int) domain.FormDefinition {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/forms", token, map[string]any{
		"owner_kind": "club",
		"owner_id":   clubID,
		"fields": []map[string]any{
			{"label": "Email", "type": "email", "required": true},
			{"label": "Age", "type": "number"},
		},
		"capacity": capacity,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var def domain.FormDefinition
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &def))
	return def
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Error)
}

func TestLogin_WrongPassword(t *testing.T) {
	s := newTestServer(t)
	s.registerAndLogin("Chess Club", "chess@uni.edu")

	rec := s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "chess@uni.edu", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateForm_Auth(t *testing.T) {
	s := newTestServer(t)
	chessID, _ := s.registerAndLogin("Chess Club", "chess@uni.edu")
	_, dramaToken := s.registerAndLogin("Drama Club", "drama@uni.edu")

	body := map[string]any{
		"owner_kind": "club",
		"owner_id":   chessID,
		"fields":     []map[string]any{{"label": "Email", "type": "email"}},
	}

	t.Run("MissingToken", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/forms", "", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("BadToken", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/forms", "not-a-token", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("OtherClub", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/forms", dramaToken, body)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "forbidden", decodeError(t, rec).Error)
	})
}

func TestCreateForm_InvalidSchema(t *testing.T) {
	s := newTestServer(t)
	clubID, token := s.registerAndLogin("Chess Club", "chess@uni.edu")

	rec := s.do(http.MethodPost, "/forms", token, map[string]any{
		"owner_kind": "club",
		"owner_id":   clubID,
		"fields":     []map[string]any{{"label": "Colour", "type": "color"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "validation_failed", body.Error)
	assert.NotEmpty(t, body.Fields)
}

func TestSubmitFlow(t *testing.T) {
	s := newTestServer(t)
	clubID, token := s.registerAndLogin("Chess Club", "chess@uni.edu")
	def := s.createClubForm(token, clubID, nil)
	assert.Equal(t, int32(1), def.Version)
	assert.Equal(t, "email", def.Fields[0].Name)

	submitPath := fmt.Sprintf("/forms/%d/submissions", def.ID)

	t.Run("PublicByOwner", func(t *testing.T) {
		rec := s.do(http.MethodGet, fmt.Sprintf("/forms/by-owner/%d", clubID), "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var got domain.FormDefinition
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, def.ID, got.ID)
	})

	t.Run("JSONSubmit", func(t *testing.T) {
		rec := s.do(http.MethodPost, submitPath, "", map[string]any{
			"version": def.Version,
			"values":  map[string]any{"email": "a@b.com", "age": 20},
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var sub domain.Submission
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
		assert.Equal(t, int64(1), sub.ID)
		assert.Equal(t, "20", sub.Values["age"])
	})

	t.Run("FormEncodedSubmit", func(t *testing.T) {
		form := url.Values{"_version": {"1"}, "email": {"c@d.org"}}
		req := httptest.NewRequest(http.MethodPost, submitPath, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		rec := s.do(http.MethodPost, submitPath, "", map[string]any{
			"values": map[string]any{"email": "not-an-email", "age": "abc"},
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, "validation_failed", body.Error)
		require.Len(t, body.Fields, 2)
		assert.Equal(t, "email", body.Fields[0].Field)
		assert.Equal(t, "age", body.Fields[1].Field)
	})

	t.Run("StaleVersion", func(t *testing.T) {
		rec := s.do(http.MethodPost, submitPath, "", map[string]any{
			"version": 7,
			"values":  map[string]any{"email": "x@y.com"},
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "stale_schema", decodeError(t, rec).Error)
	})

	t.Run("ListRequiresAdmin", func(t *testing.T) {
		rec := s.do(http.MethodGet, submitPath, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = s.do(http.MethodGet, submitPath, token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var subs []domain.Submission
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &subs))
		assert.Len(t, subs, 2)
	})

	t.Run("ExportCSV", func(t *testing.T) {
		rec := s.do(http.MethodGet, fmt.Sprintf("/forms/%d/export.csv", def.ID), token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "Chess Club_recruitment_responses.csv")

		records, err := csv.NewReader(rec.Body).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, []string{"email", "age", "submitted_at"}, records[0])
		assert.Equal(t, []string{"a@b.com", "20"}, records[1][:2])
		assert.Equal(t, []string{"c@d.org", ""}, records[2][:2])
	})

	t.Run("CloseThenSubmit", func(t *testing.T) {
		rec := s.do(http.MethodPost, fmt.Sprintf("/forms/%d/close", def.ID), token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = s.do(http.MethodPost, submitPath, "", map[string]any{
			"values": map[string]any{"email": "late@b.com"},
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "form_closed", decodeError(t, rec).Error)

		rec = s.do(http.MethodGet, fmt.Sprintf("/forms/status/%d", clubID), "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"closed"`)
	})

	t.Run("Purge", func(t *testing.T) {
		rec := s.do(http.MethodDelete, submitPath, token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"deleted":2}`, rec.Body.String())
	})
}

func TestSubmit_CapacityReached(t *testing.T) {
	s := newTestServer(t)
	_, token := s.registerAndLogin("Chess Club", "chess@uni.edu")
	capacity := 1

	rec := s.do(http.MethodPost, "/events", token, map[string]any{
		"name":     "Blitz Night",
		"date":     "2026-11-20",
		"venue":    "Hall B",
		"fields":   []map[string]any{{"label": "Email", "type": "email", "required": true}},
		"capacity": capacity,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created createEventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotNil(t, created.Form)
	assert.Equal(t, domain.OwnerKindEvent, created.Form.Owner.Kind)

	submitPath := fmt.Sprintf("/forms/%d/submissions", created.Form.ID)
	rec = s.do(http.MethodPost, submitPath, "", map[string]any{"values": map[string]any{"email": "first@b.com"}})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodPost, submitPath, "", map[string]any{"values": map[string]any{"email": "second@b.com"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "capacity_reached", body.Error)
	assert.Equal(t, "Registration limit reached", body.Message)

	rec = s.do(http.MethodGet, fmt.Sprintf("/forms/by-owner/%d?kind=event", created.Event.ID), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFormPage(t *testing.T) {
	s := newTestServer(t)
	clubID, token := s.registerAndLogin("Chess Club", "chess@uni.edu")
	def := s.createClubForm(token, clubID, nil)

	rec := s.do(http.MethodGet, fmt.Sprintf("/forms/%d/page", def.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	html := rec.Body.String()
	assert.Contains(t, html, "<title>Chess Club</title>")
	assert.Contains(t, html, fmt.Sprintf(`action="http://forms.test/forms/%d/submissions"`, def.ID))
	assert.Contains(t, html, `name="email" type="email"`)
	assert.Contains(t, html, `name="age" type="number"`)
}

func TestFormPrompts(t *testing.T) {
	s := newTestServer(t)
	clubID, token := s.registerAndLogin("Chess Club", "chess@uni.edu")
	def := s.createClubForm(token, clubID, nil)

	rec := s.do(http.MethodGet, fmt.Sprintf("/forms/%d/prompts", def.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp promptsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Open)
	require.Len(t, resp.Prompts, 2)
	assert.Equal(t, "email", resp.Prompts[0].Name)
}

func TestGetForm_NotFound(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/forms/99", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/forms/by-owner/99", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDirectory(t *testing.T) {
	s := newTestServer(t)
	clubID, token := s.registerAndLogin("Chess Club", "chess@uni.edu")

	rec := s.do(http.MethodPost, "/events", token, map[string]any{"name": "Open Day", "date": "2026-12-01"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/clubs", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var clubs []domain.Club
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &clubs))
	require.Len(t, clubs, 1)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = s.do(http.MethodGet, fmt.Sprintf("/clubs/%d/events", clubID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []domain.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Open Day", list[0].Name)

	rec = s.do(http.MethodPost, "/events", token, map[string]any{"name": "", "date": "tomorrow"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmit_LargeNumberKeepsDigits(t *testing.T) {
	s := newTestServer(t)
	clubID, token := s.registerAndLogin("Chess Club", "chess@uni.edu")
	def := s.createClubForm(token, clubID, nil)

	body := `{"values":{"email":"a@b.com","age":9007199254740993}}`
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/forms/%d/submissions", def.ID), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var sub domain.Submission
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
	assert.Equal(t, "9007199254740993", sub.Values["age"])

	rec = s.do(http.MethodGet, fmt.Sprintf("/forms/%d/submissions", def.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var subs []domain.Submission
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &subs))
	require.Len(t, subs, 1)
	assert.Equal(t, "9007199254740993", subs[0].Values["age"])
}

func TestFormByOwner_BadParameters(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name  string
		path  string
		field string
	}{
		{"ZeroOwnerID", "/forms/by-owner/0", "owner_id"},
		{"UnknownKind", "/forms/by-owner/3?kind=society", "kind"},
		{"StatusZeroOwnerID", "/forms/status/0", "owner_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodGet, tt.path, "", nil)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeError(t, rec)
			require.Len(t, body.Fields, 1)
			assert.Equal(t, tt.field, body.Fields[0].Field)
		})
	}
}

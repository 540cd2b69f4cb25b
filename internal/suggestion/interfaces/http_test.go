package interfaces

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chargemap/internal/auth"
	"chargemap/internal/suggestion/application"
	suggestion "chargemap/internal/suggestion/domain"
	"chargemap/internal/suggestion/infrastructure/memory"
)

func newTestHandler(t *testing.T, seed ...suggestion.Suggestion) (*Handler, *memory.Store) {
	t.Helper()
	store := memory.NewStore(seed...)
	logger := log.New(io.Discard, "", 0)
	svc, err := application.NewService(store, application.WithLogger(logger))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	handler, err := NewHandler(svc, logger)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler, store
}

func TestHandler_Submit(t *testing.T) {
	handler, store := newTestHandler(t)
	body := `{"plz": 10115, "address": "Invalidenstr. 1", "reason": "no charger within 1km"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/suggestions", strings.NewReader(body)))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var item suggestion.Suggestion
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if item.ID != 1 || item.Status != suggestion.StatusPending || item.PostalCode != 10115 {
		t.Fatalf("unexpected suggestion %+v", item)
	}
	stored, _ := store.Load(context.Background())
	if len(stored) != 1 {
		t.Fatalf("expected stored suggestion")
	}
}

func TestHandler_SubmitValidation(t *testing.T) {
	handler, _ := newTestHandler(t)
	cases := []string{
		`{"plz": "14201", "address": "a", "reason": "b"}`,
		`{"plz": "10115", "address": "", "reason": "b"}`,
		`{"plz": "10115", "address": "a"}`,
		`not json`,
	}
	for _, body := range cases {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/suggestions", strings.NewReader(body)))
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, resp.Code)
		}
	}
}

func TestHandler_List(t *testing.T) {
	handler, _ := newTestHandler(t,
		suggestion.Suggestion{ID: 1, PostalCode: 10115, Status: suggestion.StatusPending},
		suggestion.Suggestion{ID: 2, PostalCode: 12043, Status: suggestion.StatusApproved},
	)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/suggestions?status=approved", nil))
	var items []suggestion.Suggestion
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || items[0].ID != 2 {
		t.Fatalf("unexpected items %+v", items)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/suggestions?status=archived", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestHandler_ReviewRequiresReviewerToken(t *testing.T) {
	secret := []byte("test-secret")
	handler, store := newTestHandler(t, suggestion.Suggestion{ID: 1, PostalCode: 10115, Status: suggestion.StatusPending})
	protected := auth.NewMiddleware(secret, auth.NewDefaultPolicy(nil, nil)).Wrap(handler)

	resp := httptest.NewRecorder()
	protected.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/suggestions/1/review", strings.NewReader(`{"action":"approve"}`)))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}

	loginHandler, err := auth.NewLoginHandler("pw", secret)
	if err != nil {
		t.Fatalf("login handler: %v", err)
	}
	login := httptest.NewRecorder()
	loginHandler.ServeHTTP(login, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"password":"pw","reviewer":"anna"}`)))
	var session struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(login.Body).Decode(&session); err != nil {
		t.Fatalf("decode login: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/suggestions/1/review", strings.NewReader(`{"action":"approve","notes":"fine"}`))
	req.Header.Set("Authorization", "Bearer "+session.Token)
	resp = httptest.NewRecorder()
	protected.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	stored, _ := store.Load(context.Background())
	if stored[0].Status != suggestion.StatusApproved || stored[0].ReviewedBy != "anna" {
		t.Fatalf("unexpected stored suggestion %+v", stored[0])
	}
}

func TestHandler_ReviewErrors(t *testing.T) {
	handler, _ := newTestHandler(t, suggestion.Suggestion{ID: 1, PostalCode: 10115, Status: suggestion.StatusPending})
	cases := []struct {
		path   string
		body   string
		status int
	}{
		{path: "/api/v1/suggestions/1/review", body: `{"action":"archive","reviewer":"anna"}`, status: http.StatusBadRequest},
		{path: "/api/v1/suggestions/9/review", body: `{"action":"approve","reviewer":"anna"}`, status: http.StatusNotFound},
		{path: "/api/v1/suggestions/x/review", body: `{}`, status: http.StatusBadRequest},
		{path: "/api/v1/suggestions/1/delete", body: `{}`, status: http.StatusNotFound},
		{path: "/api/v1/suggestions/1/review", body: `{"action":"approve"}`, status: http.StatusBadRequest},
	}
	for _, tc := range cases {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, tc.path, strings.NewReader(tc.body)))
		if resp.Code != tc.status {
			t.Fatalf("%s %s: expected %d, got %d", tc.path, tc.body, tc.status, resp.Code)
		}
	}
}

package stubapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dorsu/alumnitracer/internal/app/models/dto"
	"github.com/dorsu/alumnitracer/internal/pkg/auth"
)

func newTestServer(t *testing.T) (*Server, *Account, string) {
	t.Helper()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "test",
	})
	srv := NewServer(Options{JWTService: jwtService})

	account, err := srv.Store().AddAccount(Account{
		Username: "ana",
		Email:    "ana@example.com",
		FullName: "Ana Reyes",
	}, "secret123")
	if err != nil {
		t.Fatal(err)
	}
	token, _, err := jwtService.GenerateToken(account.ID, account.Email)
	if err != nil {
		t.Fatal(err)
	}
	return srv, account, token
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestLoginIssuesToken(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/auth/login/", "", dto.LoginRequest{Username: "ana", Password: "secret123"})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var resp dto.LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Token == "" || resp.User.Username != "ana" {
		t.Fatalf("response: %+v", resp)
	}
}

func TestLoginRejectsBadPasswordWithDetail(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/auth/login/", "", dto.LoginRequest{Username: "ana", Password: "nope"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["detail"] == "" {
		t.Fatalf("error body missing detail: %s", w.Body.String())
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv, account, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/api/alumni-surveys/?alumni=1", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", w.Code)
	}
	w = doJSON(t, srv, http.MethodGet, "/api/alumni/1/", "garbage-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", w.Code)
	}
	_ = account
}

func TestSecondSurveyCreateConflicts(t *testing.T) {
	srv, account, token := newTestServer(t)

	wire := dto.SurveyWire{LastName: "Reyes", Alumni: &account.ID}
	w := doJSON(t, srv, http.MethodPost, "/api/alumni-surveys/", token, wire)
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, http.MethodPost, "/api/alumni-surveys/", token, wire)
	if w.Code != http.StatusConflict {
		t.Fatalf("status %d, want 409", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["detail"] == "" {
		t.Fatalf("conflict body: %s", w.Body.String())
	}
}

func TestSurveyPatchMergesFields(t *testing.T) {
	srv, account, token := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/alumni-surveys/", token, dto.SurveyWire{
		LastName:    "Reyes",
		HomeAddress: "Mati City",
		Alumni:      &account.ID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d", w.Code)
	}
	var created dto.SurveyWire
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	// A body carrying only one key must leave the other fields alone.
	w = doJSON(t, srv, http.MethodPatch, "/api/alumni-surveys/1/", token, map[string]string{"home_address": "Davao City"})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var patched dto.SurveyWire
	if err := json.Unmarshal(w.Body.Bytes(), &patched); err != nil {
		t.Fatal(err)
	}
	if patched.HomeAddress != "Davao City" || patched.LastName != "Reyes" {
		t.Fatalf("merge: %+v", patched)
	}
	if patched.ID != created.ID {
		t.Fatalf("id changed: %d -> %d", created.ID, patched.ID)
	}
}

func TestSurveyListFiltersByAlumni(t *testing.T) {
	srv, account, token := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/alumni-surveys/", token, dto.SurveyWire{Alumni: &account.ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d", w.Code)
	}

	w = doJSON(t, srv, http.MethodGet, "/api/alumni-surveys/?alumni=999", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var list []dto.SurveyWire
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Fatalf("foreign account sees %d surveys", len(list))
	}
}

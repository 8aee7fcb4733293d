package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"portfolio-backend/internal/users"
)

type accountsByEmail map[string]users.User

func (a accountsByEmail) FindByEmail(_ context.Context, email string) (users.User, error) {
	u, ok := a[users.NormalizeEmail(email)]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

// fakeGoogle serves the token and userinfo endpoints.
func fakeGoogle(t *testing.T, email string, verified bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"google-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer google-token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"email": email, "verified_email": verified, "name": "Ada"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func setupGoogle(t *testing.T, email string, verified bool) (*gin.Engine, *Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := fakeGoogle(t, email, verified)

	m, _ := newTestManager(t, NewMemoryStore())
	accounts := accountsByEmail{
		"admin@example.com": {ID: "u-admin", Email: "admin@example.com", Name: "Ada", IsAdmin: true},
	}
	g := NewGoogleSignIn("client-id", "client-secret", "https://api.example.com/api/v1/auth/google/callback",
		"https://portfolio.example", NewHandler(m, false), accounts)
	g.oauthConfig.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	g.userInfoURL = srv.URL + "/userinfo"

	r := gin.New()
	g.RegisterRoutes(r.Group("/api/v1"))
	return r, m
}

func startState(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/start", nil))
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d: %s", w.Code, w.Body.String())
	}
	loc, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	state := loc.Query().Get("state")
	if state == "" {
		t.Fatalf("expected state in %q", loc.String())
	}
	return state
}

func callback(r *gin.Engine, state, code string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	q := url.Values{"state": {state}, "code": {code}}
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?"+q.Encode(), nil))
	return w
}

func TestGoogleCallbackOpensSession(t *testing.T) {
	r, m := setupGoogle(t, "Admin@Example.com", true)
	state := startState(t, r)

	w := callback(r, state, "good-code")
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != "https://portfolio.example/admin" {
		t.Fatalf("expected redirect to the admin page, got %q", got)
	}

	var token string
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			token = c.Value
		}
	}
	if token == "" {
		t.Fatalf("expected session cookie")
	}
	s := m.Resolve(context.Background(), token)
	if !s.IsAuthenticated || !s.IsAdmin() || s.User.ID != "u-admin" {
		t.Fatalf("expected authenticated admin session, got %+v", s)
	}
}

func TestGoogleCallbackStateIsSingleUse(t *testing.T) {
	r, _ := setupGoogle(t, "admin@example.com", true)
	state := startState(t, r)

	if w := callback(r, state, "good-code"); w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if w := callback(r, state, "good-code"); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on replayed state, got %d", w.Code)
	}
	if w := callback(r, "never-issued", "good-code"); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on unknown state, got %d", w.Code)
	}
}

func TestGoogleCallbackRejections(t *testing.T) {
	cases := []struct {
		name     string
		email    string
		verified bool
		code     string
		status   int
	}{
		{"unknown account", "stranger@example.com", true, "good-code", http.StatusForbidden},
		{"unverified email", "admin@example.com", false, "good-code", http.StatusForbidden},
		{"bad code", "admin@example.com", true, "bad-code", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := setupGoogle(t, tc.email, tc.verified)
			w := callback(r, startState(t, r), tc.code)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
			for _, c := range w.Result().Cookies() {
				if c.Name == CookieName && c.Value != "" {
					t.Fatalf("expected no session cookie")
				}
			}
		})
	}
}

func TestAppendRedirect(t *testing.T) {
	got, err := appendRedirect("https://portfolio.example/app/", "/admin/files")
	if err != nil {
		t.Fatalf("appendRedirect: %v", err)
	}
	if got != "https://portfolio.example/admin/files" {
		t.Fatalf("unexpected redirect %q", got)
	}
	if got, _ := appendRedirect("", "/admin"); got != "/admin" {
		t.Fatalf("expected bare path, got %q", got)
	}
}

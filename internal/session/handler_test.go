package session

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/notify"
	"portfolio-backend/internal/shared/server/middleware"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m, _ := newTestManager(t, NewMemoryStore())
	m.notifier = notify.RequestSink{}

	r := gin.New()
	r.Use(middleware.Notifications(), Middleware(m))
	NewHandler(m, false).RegisterRoutes(r.Group("/api/v1"))
	return r
}

type loginEnvelope struct {
	Data          LoginResult           `json:"data"`
	Notifications []notify.Notification `json:"notifications"`
}

func TestLoginSetsCookieAndSession(t *testing.T) {
	r := setupRouter(t)

	body, _ := json.Marshal(map[string]string{"email": "admin@example.com", "password": "correct-horse", "from": "/admin/skills"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var env loginEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Redirect != "/admin/skills" {
		t.Fatalf("expected redirect /admin/skills, got %q", env.Data.Redirect)
	}
	if len(env.Notifications) != 1 || env.Notifications[0].Title != "Login successful" {
		t.Fatalf("unexpected notifications: %+v", env.Notifications)
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			cookie = c
		}
	}
	if cookie == nil || !cookie.HttpOnly {
		t.Fatalf("expected http-only session cookie, got %+v", cookie)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var s Session
	if err := json.Unmarshal(w.Body.Bytes(), &s); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if !s.IsAuthenticated || s.User == nil || s.User.Email != "admin@example.com" {
		t.Fatalf("expected authenticated admin, got %+v", s)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	r := setupRouter(t)

	body, _ := json.Marshal(map[string]string{"email": "admin@example.com", "password": "nope-nope"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("Login failed")) {
		t.Fatalf("expected failure notification, got %s", w.Body.String())
	}
}

func TestLogoutWithBearerToken(t *testing.T) {
	r := setupRouter(t)

	body, _ := json.Marshal(map[string]string{"email": "admin@example.com", "password": "correct-horse"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env loginEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+env.Data.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+env.Data.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var s Session
	if err := json.Unmarshal(w.Body.Bytes(), &s); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if s.IsAuthenticated || s.IsLoading {
		t.Fatalf("expected unauthenticated after logout, got %+v", s)
	}
}

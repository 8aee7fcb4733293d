package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portfolio-backend/internal/shared/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Env:                  "dev",
		PublicBaseURL:        "http://localhost:8080",
		RecordStoreType:      "memory",
		BlobStoreType:        "local",
		LocalStoreDir:        t.TempDir(),
		StorageBucket:        "project_files",
		MaxUploadBytes:       1 << 20,
		JWTSecret:            "test-secret-0123456789",
		SessionTTL:           time.Hour,
		SessionCheckTimeout:  time.Second,
		LoginRatePerMin:      5,
		CacheRefreshSchedule: "@every 1h",
		AdminEmail:           "admin@example.com",
		AdminName:            "Admin",
		AdminPassword:        "correct-horse",
	}
}

func do(t *testing.T, app *App, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	return w
}

func TestAdminFlow(t *testing.T) {
	ctx := context.Background()
	app, err := Build(ctx, testConfig(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(app.Close)
	if err := app.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	w := do(t, app, http.MethodGet, "/api/v1/admin/projects", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 before login, got %d", w.Code)
	}

	w = do(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "admin@example.com", "password": "correct-horse",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var login struct {
		Data struct {
			Token    string `json:"token"`
			Redirect string `json:"redirect"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if login.Data.Redirect != "/admin" {
		t.Fatalf("expected default redirect /admin, got %q", login.Data.Redirect)
	}
	token := login.Data.Token

	w = do(t, app, http.MethodPost, "/api/v1/admin/projects", token, map[string]any{
		"title": "Portfolio", "description": "This site", "technologies": []string{"Go"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add project: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("Portfolio has been added to your portfolio.")) {
		t.Fatalf("expected success notification, got %s", w.Body.String())
	}

	w = do(t, app, http.MethodGet, "/api/v1/projects", "", nil)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"title":"Portfolio"`)) {
		t.Fatalf("public projects: got %d %s", w.Code, w.Body.String())
	}

	w = do(t, app, http.MethodGet, "/api/v1/admin/dashboard", token, nil)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"projects":1`)) {
		t.Fatalf("dashboard: got %d %s", w.Code, w.Body.String())
	}

	w = do(t, app, http.MethodGet, "/api/v1/navigation?path=/admin/files", token, nil)
	if !bytes.Contains(w.Body.Bytes(), []byte(`"kind":"render"`)) {
		t.Fatalf("navigation: got %s", w.Body.String())
	}

	w = do(t, app, http.MethodPost, "/api/v1/auth/logout", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", w.Code)
	}
	w = do(t, app, http.MethodGet, "/api/v1/admin/dashboard", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", w.Code)
	}
}

func TestSQLiteRecordStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.RecordStoreType = "sqlite"
	cfg.SQLitePath = t.TempDir() + "/portfolio.db"

	ctx := context.Background()
	app, err := Build(ctx, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(app.Close)

	n, err := app.Users.Count(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected seeded admin, got n=%d err=%v", n, err)
	}
	for _, name := range app.Collections() {
		if err := app.Refetch(ctx, name); err != nil {
			t.Fatalf("refetch %s: %v", name, err)
		}
	}
	if report := app.Health.Status(ctx); !report.OK {
		t.Fatalf("expected healthy, got %+v", report)
	}
}

func TestBuildRequiresSecretOutsideDev(t *testing.T) {
	cfg := testConfig(t)
	cfg.Env = "production"
	cfg.JWTSecret = ""
	if _, err := Build(context.Background(), cfg); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

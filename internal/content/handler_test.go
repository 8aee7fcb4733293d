package content

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/notify"
	"portfolio-backend/internal/remote/memory"
	"portfolio-backend/internal/shared/server/middleware"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reg := NewRegistry(Tables{
		Projects:   memory.NewTable(ProjectSchema),
		Experience: memory.NewTable(ExperienceSchema),
		Skills:     memory.NewTable(SkillSchema),
	}, notify.RequestSink{}, nil)

	r := gin.New()
	r.Use(middleware.Notifications())
	h := NewHandler(reg)
	h.RegisterPublicRoutes(r.Group("/api/v1"))
	h.RegisterAdminRoutes(r.Group("/api/v1/admin"))
	return r, reg
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestHandlerAddProjectReturnsNotifications(t *testing.T) {
	r, reg := newTestRouter(t)

	resp := doJSON(r, http.MethodPost, "/api/v1/admin/projects", map[string]any{
		"title":        "Site",
		"description":  "Portfolio",
		"technologies": []string{"go"},
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var payload struct {
		Data          Project               `json:"data"`
		Notifications []notify.Notification `json:"notifications"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Data.ID == "" || payload.Data.Title != "Site" {
		t.Fatalf("unexpected project: %+v", payload.Data)
	}
	if len(payload.Notifications) != 1 || payload.Notifications[0].Title != "Project added" {
		t.Fatalf("unexpected notifications: %+v", payload.Notifications)
	}
	if reg.Projects.Len() != 1 {
		t.Fatalf("expected cached project")
	}

	list := doJSON(r, http.MethodGet, "/api/v1/projects", nil)
	var projects []Project
	if err := json.Unmarshal(list.Body.Bytes(), &projects); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}
}

func TestHandlerValidationError(t *testing.T) {
	r, _ := newTestRouter(t)

	resp := doJSON(r, http.MethodPost, "/api/v1/admin/skills", map[string]any{
		"name":     "Go",
		"level":    150,
		"category": "Languages",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Error.Code != "validation_error" {
		t.Fatalf("unexpected code %q", payload.Error.Code)
	}
	if payload.Error.Message != "level must be between 0 and 100" {
		t.Fatalf("unexpected message %q", payload.Error.Message)
	}
}

func TestHandlerDeleteUnknownReturns404(t *testing.T) {
	r, _ := newTestRouter(t)

	resp := doJSON(r, http.MethodDelete, "/api/v1/admin/experience/nope", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	var payload struct {
		Notifications []notify.Notification `json:"notifications"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Notifications) != 1 || payload.Notifications[0].Description != "Experience not found." {
		t.Fatalf("unexpected notifications: %+v", payload.Notifications)
	}
}

func TestHandlerPatchUpdatesPartially(t *testing.T) {
	r, reg := newTestRouter(t)
	created := doJSON(r, http.MethodPost, "/api/v1/admin/skills", map[string]any{
		"name": "Go", "level": 70, "category": "Languages",
	})
	if created.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", created.Code)
	}
	id := reg.Skills.All()[0].ID

	resp := doJSON(r, http.MethodPatch, "/api/v1/admin/skills/"+id, map[string]any{"level": 85})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	got, _ := reg.Skills.Get(id)
	if got.Level != 85 || got.Name != "Go" || got.Category != "Languages" {
		t.Fatalf("unexpected skill after patch: %+v", got)
	}
}

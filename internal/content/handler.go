package content

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/shared/server/respond"
)

// Handler exposes the content registry over HTTP.
type Handler struct {
	Registry *Registry
}

// NewHandler constructs a Handler.
func NewHandler(reg *Registry) *Handler {
	return &Handler{Registry: reg}
}

// RegisterPublicRoutes attaches the read-only portfolio routes.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/content", h.all)
	rg.GET("/projects", collectionRoutes[Project, ProjectInput, ProjectPatch]{h.Registry.Projects}.list)
	rg.GET("/experience", collectionRoutes[Experience, ExperienceInput, ExperiencePatch]{h.Registry.Experience}.list)
	rg.GET("/skills", collectionRoutes[Skill, SkillInput, SkillPatch]{h.Registry.Skills}.list)
}

// RegisterAdminRoutes attaches the CRUD routes. The group is expected to be
// guarded by the access gate.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	collectionRoutes[Project, ProjectInput, ProjectPatch]{h.Registry.Projects}.register(rg, "/projects")
	collectionRoutes[Experience, ExperienceInput, ExperiencePatch]{h.Registry.Experience}.register(rg, "/experience")
	collectionRoutes[Skill, SkillInput, SkillPatch]{h.Registry.Skills}.register(rg, "/skills")
	rg.POST("/content/refresh", h.refresh)
}

func (h *Handler) all(c *gin.Context) {
	respond.OK(c, gin.H{
		"projects":   h.Registry.Projects.All(),
		"experience": h.Registry.Experience.All(),
		"skills":     h.Registry.Skills.All(),
	})
}

func (h *Handler) refresh(c *gin.Context) {
	if err := h.Registry.FetchAll(c.Request.Context()); err != nil {
		respond.Error(c, http.StatusBadGateway, "remote_error", "failed to refresh content", nil)
		return
	}
	respond.Data(c, http.StatusOK, h.Registry.Counts())
}

type collectionRoutes[T any, I Input, P Patch[T]] struct {
	col *Collection[T, I, P]
}

func (r collectionRoutes[T, I, P]) register(rg *gin.RouterGroup, path string) {
	rg.GET(path, r.list)
	rg.POST(path, r.add)
	rg.PATCH(path+"/:id", r.update)
	rg.DELETE(path+"/:id", r.remove)
}

func (r collectionRoutes[T, I, P]) list(c *gin.Context) {
	respond.OK(c, r.col.All())
}

func (r collectionRoutes[T, I, P]) add(c *gin.Context) {
	var in I
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	rec, err := r.col.Add(c.Request.Context(), in)
	if err != nil {
		r.fail(c, "add", err)
		return
	}
	respond.Data(c, http.StatusCreated, rec)
}

func (r collectionRoutes[T, I, P]) update(c *gin.Context) {
	id := c.Param("id")
	c.Set("recordId", id)
	var patch P
	if err := c.ShouldBindJSON(&patch); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	rec, err := r.col.Update(c.Request.Context(), id, patch)
	if err != nil {
		r.fail(c, "update", err)
		return
	}
	respond.Data(c, http.StatusOK, rec)
}

func (r collectionRoutes[T, I, P]) remove(c *gin.Context) {
	id := c.Param("id")
	c.Set("recordId", id)
	if err := r.col.Delete(c.Request.Context(), id); err != nil {
		r.fail(c, "delete", err)
		return
	}
	respond.Data(c, http.StatusOK, gin.H{"id": id})
}

func (r collectionRoutes[T, I, P]) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", errorMessage(err), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", r.col.kind.Entity+" not found.", nil)
	default:
		respond.Error(c, http.StatusBadGateway, "remote_error", "failed to "+op+" "+r.col.kind.noun(), nil)
	}
}

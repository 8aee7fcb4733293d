package gate

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/session"
	"portfolio-backend/internal/shared/server/respond"
)

// NavigationResponse is returned by GET /navigation.
type NavigationResponse struct {
	Path     string          `json:"path"`
	Route    *Route          `json:"route,omitempty"`
	Decision Decision        `json:"decision"`
	Session  session.Session `json:"session"`
}

// RegisterRoutes attaches the navigation endpoint.
func RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/navigation", navigation)
}

func navigation(c *gin.Context) {
	path := strings.TrimSpace(c.Query("path"))
	if path == "" || !strings.HasPrefix(path, "/") {
		respond.Error(c, http.StatusBadRequest, "validation_error", "path must be an absolute site path", nil)
		return
	}

	s := session.FromContext(c.Request.Context())
	resp := NavigationResponse{Path: path, Session: s, Decision: Decision{Kind: Render}}
	if route, ok := Match(path); ok {
		resp.Route = &route
		if route.Protected {
			resp.Decision = Decide(s, route.RequiresAdmin, path)
		}
	}
	if resp.Decision.Kind == Loading {
		c.Header("Retry-After", "1")
	}
	respond.OK(c, resp)
}

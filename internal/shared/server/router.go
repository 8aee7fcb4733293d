package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/content"
	"portfolio-backend/internal/dashboard"
	"portfolio-backend/internal/files"
	"portfolio-backend/internal/gate"
	"portfolio-backend/internal/remote"
	"portfolio-backend/internal/services/health"
	"portfolio-backend/internal/session"
	"portfolio-backend/internal/shared/config"
	"portfolio-backend/internal/shared/metrics"
	"portfolio-backend/internal/shared/server/middleware"
	"portfolio-backend/internal/shared/server/respond"
)

const (
	rateGroupLogin  = "LOGIN"
	rateGroupUpload = "UPLOAD"
	uploadsPerMin   = 30
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config    config.Config
	Sessions  *session.Manager
	Auth      *session.Handler
	Google    *session.GoogleSignIn
	Content   *content.Handler
	Files     *files.Handler
	Dashboard *dashboard.Service
	Health    *health.Service
	// LocalBlobs is set when blobs are served by this process.
	LocalBlobs remote.BlobStore
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Notifications(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		session.Middleware(deps.Sessions),
	)

	r.GET("/metrics", metrics.Handler())
	if deps.LocalBlobs != nil {
		files.RegisterBlobRoutes(r, deps.LocalBlobs)
	}

	limiter := middleware.NewRateLimiter(nil)
	limit := func(group string, rule middleware.RateLimitRule) gin.HandlerFunc {
		return middleware.RateLimit(middleware.RateLimitConfig{
			Rules:        map[string]middleware.RateLimitRule{group: rule},
			DefaultGroup: group,
			Limiter:      limiter,
		})
	}

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		report := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})
	registerMeRoutes(api)
	gate.RegisterRoutes(api)

	deps.Auth.RegisterRoutes(api, limit(rateGroupLogin, middleware.PerMinute(deps.Config.LoginRatePerMin)))
	if deps.Google != nil {
		deps.Google.RegisterRoutes(api)
	}

	deps.Content.RegisterPublicRoutes(api)
	deps.Files.RegisterPublicRoutes(api)

	admin := api.Group("/admin", gate.Require(true))
	deps.Content.RegisterAdminRoutes(admin)
	deps.Files.RegisterAdminRoutes(admin, limit(rateGroupUpload, middleware.PerMinute(uploadsPerMin)))
	if deps.Dashboard != nil {
		deps.Dashboard.RegisterRoutes(admin)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}

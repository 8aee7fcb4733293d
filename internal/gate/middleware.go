package gate

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/session"
	"portfolio-backend/internal/shared/metrics"
	"portfolio-backend/internal/shared/server/respond"
)

// Require guards API routes with the gate. A loading session is answered
// with 503 and Retry-After so the client retries instead of signing out.
// The login redirect carries no "from": an API path is not a page to return to.
func Require(requiresAdmin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := Decide(session.FromContext(c.Request.Context()), requiresAdmin, "")
		metrics.GateDecisions.WithLabelValues(string(d.Kind)).Inc()

		switch d.Kind {
		case Loading:
			c.Header("Retry-After", "1")
			respond.Error(c, http.StatusServiceUnavailable, "session_loading", "session check has not completed", nil)
		case RedirectLogin:
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "sign in required", gin.H{"redirect": d.Redirect})
		case RedirectHome:
			respond.Error(c, http.StatusForbidden, "forbidden", "admin access required", gin.H{"redirect": d.Redirect})
		default:
			c.Next()
		}
	}
}

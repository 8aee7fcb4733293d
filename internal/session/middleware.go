package session

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/shared/server/middleware"
)

// CookieName is the cookie carrying the session token.
const CookieName = "portfolio_session"

type ctxKey struct{}

// WithSession stores s on ctx.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session on ctx. A request whose session has not
// been resolved yet is loading.
func FromContext(ctx context.Context) Session {
	if ctx != nil {
		if s, ok := ctx.Value(ctxKey{}).(Session); ok {
			return s
		}
	}
	return Pending()
}

// TokenFrom reads the session token from the Authorization header or the
// session cookie.
func TokenFrom(c *gin.Context) string {
	if h := strings.TrimSpace(c.GetHeader("Authorization")); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(CookieName); err == nil {
		return cookie
	}
	return ""
}

// Middleware attaches a pending session to the request, runs the session
// check and replaces it with the resolved session.
func Middleware(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := WithSession(c.Request.Context(), Pending())
		c.Request = c.Request.WithContext(ctx)

		s := m.Resolve(ctx, TokenFrom(c))
		c.Request = c.Request.WithContext(WithSession(ctx, s))
		if s.IsAuthenticated && s.User != nil {
			middleware.SetIdentity(c, s.User.ID, s.User.Email, s.User.Name, s.User.IsAdmin)
		}
		c.Next()
	}
}

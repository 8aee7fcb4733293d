package middleware

import (
	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/notify"
)

// Notifications attaches a collector so notifications raised while serving
// the request can be returned with the response.
func Notifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _ := notify.WithCollector(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

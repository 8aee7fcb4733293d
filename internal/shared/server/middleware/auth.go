package middleware

import (
	"github.com/gin-gonic/gin"
)

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
	userNameKey  = "userName"
	isAdminKey   = "isAdmin"
)

// SetIdentity stores the resolved user on the gin context so later
// middleware and the request log can read it.
func SetIdentity(c *gin.Context, id, email, name string, isAdmin bool) {
	c.Set(userIDKey, id)
	if email != "" {
		c.Set(userEmailKey, email)
	}
	if name != "" {
		c.Set(userNameKey, name)
	}
	c.Set(isAdminKey, isAdmin)
}

// UserIDFromContext fetches the user ID set by SetIdentity.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// UserEmailFromContext fetches the user email set by SetIdentity.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userEmailKey)
	if email, ok := val.(string); ok {
		return email
	}
	return ""
}

// UserNameFromContext fetches the user name set by SetIdentity.
func UserNameFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userNameKey)
	if name, ok := val.(string); ok {
		return name
	}
	return ""
}

// IsAdminFromContext reports the admin flag set by SetIdentity.
func IsAdminFromContext(c *gin.Context) bool {
	if c == nil {
		return false
	}
	return c.GetBool(isAdminKey)
}

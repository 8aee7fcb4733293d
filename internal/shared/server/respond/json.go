package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/notify"
)

// Envelope carries a mutation result and the notifications it raised.
type Envelope struct {
	Data          interface{}           `json:"data"`
	Notifications []notify.Notification `json:"notifications"`
}

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}

// Data writes payload inside an Envelope with the request's notifications.
func Data(c *gin.Context, status int, payload interface{}) {
	JSON(c, status, Envelope{Data: payload, Notifications: notify.Collected(c.Request.Context())})
}

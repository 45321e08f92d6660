package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionKey is the context key the middleware sets.
const SessionKey = "sessionId"

// RequireSession extracts the opaque client session id from the X-Session-Id
// header (or the sessionId query parameter for transports that cannot set
// headers, like a page-unload beacon) and sets it in the request context.
// There is no authentication here; the session id only deduplicates joins
// and attributes turns.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("X-Session-Id")
		if sessionID == "" {
			sessionID = c.Query("sessionId")
		}
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing session id"})
			c.Abort()
			return
		}
		c.Set(SessionKey, sessionID)
		c.Next()
	}
}

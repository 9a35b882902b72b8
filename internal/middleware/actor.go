package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const actorIDKey = "actorID"

// actorIDHeader carries the authenticated account ID, injected by the
// identity gateway in front of this service.
const actorIDHeader = "X-Actor-ID"

// ActorMiddleware requires the actor header on every request and stashes it
// in the gin context for handlers.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetHeader(actorIDHeader)
		if actorID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + actorIDHeader + " header"})
			return
		}
		c.Set(actorIDKey, actorID)
		c.Next()
	}
}

// GetActorIDFromContext retrieves the acting account ID set by ActorMiddleware.
func GetActorIDFromContext(c *gin.Context) (string, bool) {
	actorID := c.GetString(actorIDKey)
	return actorID, actorID != ""
}

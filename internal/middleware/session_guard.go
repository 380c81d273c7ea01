package middleware

import (
	"net/http"

	"planner/internal/session"

	"github.com/gin-gonic/gin"
)

// UserIDKey holds the confirmed user's id on guarded routes.
const UserIDKey = "userID"

type SessionReader interface {
	Snapshot() session.Snapshot
}

// SessionGuard lets a request through only when the session holds a confirmed user.
func SessionGuard(sess SessionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := sess.Snapshot()
		switch snap.State {
		case session.Authenticated:
			c.Set(UserIDKey, snap.User.ID)
			c.Next()
		case session.Pending:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session not confirmed"})
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		}
	}
}

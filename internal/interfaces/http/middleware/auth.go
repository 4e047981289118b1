// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-client/internal/domain/session"
)

// SessionChecker reports the current session state
type SessionChecker interface {
	SessionState() session.State
}

// RequireSession rejects requests made while no user is logged in
func RequireSession(checker SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if checker.SessionState() != session.Authenticated {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":    "Authentication required",
				"redirect": "/login",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sketchboard/token"
)

// Context keys set by RequireAuth for downstream handlers.
const (
	ContextUserID   = "userId"
	ContextUsername = "username"
)

// RequireAuth verifies the bearer token on every request it guards. A
// missing token is 401; a present but invalid or expired one is 403.
func RequireAuth(tokens *token.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		// CORS preflight carries no credentials
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusForbidden, gin.H{"message": "Authorization header must be: Bearer <token>"})
			c.Abort()
			return
		}

		claims, err := tokens.Verify(parts[1])
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"message": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Next()
	}
}

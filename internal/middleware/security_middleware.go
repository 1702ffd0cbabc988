package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-pos-vault/internal/auth"
	"go-pos-vault/internal/models"
)

// Context keys set by AuthMiddleware.
const (
	KeyUserID   = "userID"
	KeyUsername = "username"
	KeyRole     = "role"
)

// Users resolves a token's user against the current account list.
type Users interface {
	User(id int64) (models.User, bool)
}

// AuthMiddleware checks if the request carries a valid JWT for a user that
// still exists. The role comes from the account, not the token, so demotions
// and deletions take effect immediately.
func AuthMiddleware(tokens *auth.Tokens, users Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get the token from the "Authorization" header
		// Format: "Bearer <token>"
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		// 2. Remove the "Bearer " prefix
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer"})
			return
		}

		// 3. Validate the token
		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		// 4. Look the user up; deleted accounts lose access
		user, ok := users.User(claims.UserID)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account no longer exists"})
			return
		}

		// 5. Store user info in the context for the next handler (or AI Agent) to use
		c.Set(KeyUserID, user.ID)
		c.Set(KeyUsername, user.Username)
		c.Set(KeyRole, user.Role)

		c.Next()
	}
}

// RequireRole only lets the given role through
func RequireRole(allowed models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(KeyRole)
		if !ok || role != allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
			return
		}
		c.Next()
	}
}

// Actor is the audit label of the authenticated user.
func Actor(c *gin.Context) string {
	if name := c.GetString(KeyUsername); name != "" {
		return name
	}
	return "system"
}

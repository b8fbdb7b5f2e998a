package middleware

import (
	"context"
	"net/http"
	"strings"

	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// UserLoader resolves the user behind a validated token.
type UserLoader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Authenticate resolves the acting user from a Bearer token. Requests without
// an Authorization header continue as anonymous; a header that is malformed
// or carries an invalid token is rejected with 401.
func Authenticate(authService service.AuthService, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		// format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// the account may have been deleted since the token was issued
		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(actorKey, user)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ActorFrom(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// ActorFrom returns the authenticated user, or nil for anonymous requests.
func ActorFrom(c *gin.Context) *models.User {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

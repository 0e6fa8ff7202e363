package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"regnify/internal/domain"
	"regnify/internal/service"
)

const (
	ContextKeyUserID   = "user_id"
	ContextKeyUsername = "username"
	ContextKeyEmail    = "email"
	ContextKeyRole     = "role"
	ContextKeyClaims   = "claims"
)

// AuthMiddleware returns Gin middleware that validates JWT access tokens,
// rejects revoked ones and injects the user context.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "missing or invalid authorization header"},
			})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, domain.ErrUnauthorized) {
				requestID, _ := c.Get("request_id")
				log.Printf("[%s] token validation: %v", requestID, err)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "invalid or expired token"},
			})
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyUsername, claims.Username)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyRole, string(claims.Role))
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// RequireRole returns middleware that checks the user's role against allowed roles.
func RequireRole(roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleStr, exists := c.Get(ContextKeyRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   gin.H{"code": "FORBIDDEN", "message": "role not found in context"},
			})
			return
		}

		userRole := domain.UserRole(roleStr.(string))
		for _, r := range roles {
			if userRole == r {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   gin.H{"code": "FORBIDDEN", "message": "insufficient permissions"},
		})
	}
}

// GetUserID extracts the user ID from the Gin context.
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	val, exists := c.Get(ContextKeyUserID)
	if !exists {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return val.(uuid.UUID), nil
}

// GetUsername extracts the username from the Gin context.
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextKeyUsername)
}

// GetRole extracts the user role string from the Gin context.
func GetRole(c *gin.Context) string {
	return c.GetString(ContextKeyRole)
}

// GetClaims returns the validated token claims.
func GetClaims(c *gin.Context) (*service.Claims, error) {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil, domain.ErrUnauthorized
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const (
	userIDKey   = "user_id"
	usernameKey = "username"
	claimsKey   = "claims"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// AuthMiddleware creates a middleware that validates JWT tokens
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication credentials were not provided"})
			return
		}
		if authenticate(c, validator) {
			c.Next()
		}
	}
}

// OptionalAuth identifies the caller when a token is sent and lets anonymous requests through.
// A token that is sent but invalid is still rejected.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		if authenticate(c, validator) {
			c.Next()
		}
	}
}

func authenticate(c *gin.Context, validator TokenValidator) bool {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
		return false
	}

	claims, err := validator.ValidateToken(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return false
		}
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg("token validation failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return false
	}

	c.Set(userIDKey, claims.UserID)
	c.Set(usernameKey, claims.Username)
	c.Set(claimsKey, claims)
	return true
}

// bearerToken accepts "Bearer <token>" and "Token <token>".
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	if !strings.EqualFold(scheme, "Bearer") && !strings.EqualFold(scheme, "Token") {
		return "", false
	}
	return token, true
}

// UserID returns the authenticated caller, if any.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// Viewer returns the authenticated caller as an optional id.
func Viewer(c *gin.Context) *uint {
	if id, ok := UserID(c); ok {
		return &id
	}
	return nil
}

// Claims returns the validated token claims, if any.
func Claims(c *gin.Context) (*types.TokenClaims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*types.TokenClaims)
	return claims, ok
}

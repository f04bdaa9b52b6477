package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/service"
)

// respondError translates a service error into a status and body.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	var cerr *service.ConflictError

	switch {
	case errors.Is(err, errBodyTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, verr.Fields)
	case errors.As(err, &cerr):
		c.JSON(http.StatusBadRequest, gin.H{"error": cerr.Message})
	case errors.Is(err, service.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		logging.Ctx(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrUnauthorized.Error()})
}

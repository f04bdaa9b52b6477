package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/logging"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger tags each request with an id and logs it once it completes.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = logging.NewRequestID()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logging.ContextWithRequestID(c.Request.Context(), id))

		c.Next()

		status := c.Writer.Status()
		event := logging.Ctx(c.Request.Context()).Info()
		switch {
		case status >= 500:
			event = logging.Ctx(c.Request.Context()).Error()
		case status >= 400:
			event = logging.Ctx(c.Request.Context()).Warn()
		}
		if userID, ok := UserID(c); ok {
			event = event.Uint("user_id", userID)
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}

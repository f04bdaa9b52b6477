package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/pageza/foodgram/backend/internal/testdb"
)

func limitedRouter(rl *RateLimiter, userID uint) *gin.Engine {
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		c.Set(userIDKey, userID)
		c.Next()
	}, rl.RateLimitMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func TestRateLimiterWithoutRedisAllowsEverything(t *testing.T) {
	r := limitedRouter(NewRecipeCreationRateLimiter(nil, 1), 1)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusCreated, w.Code)
	}
}

func TestRateLimiterRejectsOverLimit(t *testing.T) {
	client := testdb.NewRedis(t)
	rl := NewRecipeCreationRateLimiter(client, 2)
	alice := limitedRouter(rl, 1)
	bob := limitedRouter(rl, 2)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		alice.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
			assert.Contains(t, w.Body.String(), "retry_after")
		}
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	bob.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type mockValidator struct {
	mock.Mock
}

func (m *mockValidator) ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error) {
	args := m.Called(ctx, token)
	claims, _ := args.Get(0).(*types.TokenClaims)
	return claims, args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/", mw, func(c *gin.Context) {
		id, ok := UserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id, "authenticated": ok})
	})
	return r
}

func serve(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	v := new(mockValidator)
	v.On("ValidateToken", mock.Anything, "good").Return(&types.TokenClaims{UserID: 7, Username: "cook"}, nil)
	v.On("ValidateToken", mock.Anything, "bad").Return(nil, service.ErrInvalidToken)
	v.On("ValidateToken", mock.Anything, "boom").Return(nil, errors.New("db down"))
	r := newAuthRouter(AuthMiddleware(v))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"bearer", "Bearer good", http.StatusOK},
		{"token scheme", "Token good", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"unknown scheme", "Basic good", http.StatusUnauthorized},
		{"no token", "Bearer", http.StatusUnauthorized},
		{"invalid token", "Bearer bad", http.StatusUnauthorized},
		{"validator failure", "Bearer boom", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, tt.header)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"user_id":7,"authenticated":true}`, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"error"`)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	v := new(mockValidator)
	v.On("ValidateToken", mock.Anything, "good").Return(&types.TokenClaims{UserID: 3}, nil)
	v.On("ValidateToken", mock.Anything, "bad").Return(nil, service.ErrInvalidToken)
	r := newAuthRouter(OptionalAuth(v))

	w := serve(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0,"authenticated":false}`, w.Body.String())

	w = serve(r, "Token good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":3,"authenticated":true}`, w.Body.String())

	w = serve(r, "Token bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	v.AssertNotCalled(t, "ValidateToken", mock.Anything, "")
}

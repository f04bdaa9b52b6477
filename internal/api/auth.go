package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type AuthHandler struct {
	auth service.IAuthService
}

func NewAuthHandler(auth service.IAuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	token := router.Group("/auth/token")
	{
		token.POST("/login", h.Login)
		token.POST("/logout", middleware.AuthMiddleware(h.auth), h.Logout)
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.TokenResponse{AuthToken: token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		unauthorized(c)
		return
	}
	if err := h.auth.Logout(c.Request.Context(), claims); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

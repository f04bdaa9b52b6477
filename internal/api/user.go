package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type UserHandler struct {
	users         service.IUserService
	subscriptions service.ISubscriptionService
	validator     middleware.TokenValidator
	pages         Paginator
}

func NewUserHandler(users service.IUserService, subscriptions service.ISubscriptionService, validator middleware.TokenValidator, pages Paginator) *UserHandler {
	return &UserHandler{
		users:         users,
		subscriptions: subscriptions,
		validator:     validator,
		pages:         pages,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.validator)
	optional := middleware.OptionalAuth(h.validator)

	users := router.Group("/users")
	{
		users.GET("", optional, h.ListUsers)
		users.POST("", h.Register)
		users.GET("/me", auth, h.Me)
		users.POST("/set_password", auth, h.SetPassword)
		users.GET("/subscriptions", auth, h.ListSubscriptions)
		users.GET("/:id", optional, h.GetUser)
		users.POST("/:id/subscribe", auth, h.Subscribe)
		users.DELETE("/:id/subscribe", auth, h.Unsubscribe)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	req, ok := h.pages.parse(c)
	if !ok {
		invalidPage(c)
		return
	}

	results, total, err := h.users.List(c.Request.Context(), middleware.Viewer(c), req.offset, req.limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.beyond(total) {
		invalidPage(c)
		return
	}
	c.JSON(http.StatusOK, newPage(c, req, results, total))
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	user, err := h.users.Get(c.Request.Context(), userID, &userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		notFound(c)
		return
	}
	user, err := h.users.Get(c.Request.Context(), id, middleware.Viewer(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req types.SetPasswordRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	if err := h.users.SetPassword(c.Request.Context(), userID, &req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	req, ok := h.pages.parse(c)
	if !ok {
		invalidPage(c)
		return
	}
	recipesLimit, err := parseRecipesLimit(c)
	if err != nil {
		respondError(c, err)
		return
	}

	results, total, err := h.subscriptions.List(c.Request.Context(), userID, req.offset, req.limit, recipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.beyond(total) {
		invalidPage(c)
		return
	}
	c.JSON(http.StatusOK, newPage(c, req, results, total))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	authorID, ok := parseID(c, "id")
	if !ok {
		notFound(c)
		return
	}
	recipesLimit, err := parseRecipesLimit(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.subscriptions.Subscribe(ctx, userID, authorID); err != nil {
		respondError(c, err)
		return
	}

	body, err := h.subscriptions.Get(ctx, userID, authorID, recipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, body)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	authorID, ok := parseID(c, "id")
	if !ok {
		notFound(c)
		return
	}

	if err := h.subscriptions.Unsubscribe(c.Request.Context(), userID, authorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

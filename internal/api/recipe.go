package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type RecipeHandler struct {
	recipes   service.IRecipeService
	shopping  service.IShoppingListService
	validator middleware.TokenValidator
	limiter   *middleware.RateLimiter
	pages     Paginator
}

func NewRecipeHandler(recipes service.IRecipeService, shopping service.IShoppingListService, validator middleware.TokenValidator, limiter *middleware.RateLimiter, pages Paginator) *RecipeHandler {
	return &RecipeHandler{
		recipes:   recipes,
		shopping:  shopping,
		validator: validator,
		limiter:   limiter,
		pages:     pages,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.validator)
	optional := middleware.OptionalAuth(h.validator)
	capped := limitBody(maxRecipeBody)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.POST("", auth, h.limiter.RateLimitMiddleware(), capped, h.CreateRecipe)
		recipes.GET("/download_shopping_cart", auth, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.GetRecipe)
		recipes.PATCH("/:id", auth, capped, h.UpdateRecipe)
		recipes.DELETE("/:id", auth, h.DeleteRecipe)
		recipes.POST("/:id/favorite", auth, h.AddFavorite)
		recipes.DELETE("/:id/favorite", auth, h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", auth, h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", auth, h.RemoveFromCart)
	}
}

// render writes recipe id in the shape op calls for.
func (h *RecipeHandler) render(c *gin.Context, status int, op types.Operation, id uint) {
	ctx := c.Request.Context()

	var body any
	var err error
	switch types.ShapeFor(op) {
	case types.ShapeShort:
		body, err = h.recipes.GetShort(ctx, id)
	default:
		body, err = h.recipes.Get(ctx, id, middleware.Viewer(c))
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, body)
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	req, ok := h.pages.parse(c)
	if !ok {
		invalidPage(c)
		return
	}

	filter, err := service.ParseRecipeFilter(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	results, total, err := h.recipes.List(c.Request.Context(), filter, middleware.Viewer(c), req.offset, req.limit)
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

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		notFound(c)
		return
	}
	h.render(c, http.StatusOK, types.Operation{Resource: types.ResourceRecipe, Action: types.ActionRetrieve}, id)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req types.RecipeWriteRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	id, err := h.recipes.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.render(c, http.StatusCreated, types.Operation{Resource: types.ResourceRecipe, Action: types.ActionCreate}, id)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		notFound(c)
		return
	}

	var req types.RecipeWriteRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	if err := h.recipes.Update(c.Request.Context(), id, userID, &req); err != nil {
		respondError(c, err)
		return
	}
	h.render(c, http.StatusOK, types.Operation{Resource: types.ResourceRecipe, Action: types.ActionUpdate}, id)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		notFound(c)
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type toggleFunc func(h *RecipeHandler, c *gin.Context, userID, recipeID uint) error

// toggle runs one add or remove on the caller's favorites or cart.
// Adds answer 201 with the recipe, removes answer 204.
func (h *RecipeHandler) toggle(c *gin.Context, resource string, adding bool, fn toggleFunc) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		notFound(c)
		return
	}

	if err := fn(h, c, userID, id); err != nil {
		respondError(c, err)
		return
	}
	if !adding {
		c.Status(http.StatusNoContent)
		return
	}
	h.render(c, http.StatusCreated, types.Operation{Resource: resource, Action: types.ActionCreate}, id)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.toggle(c, types.ResourceFavorite, true, func(h *RecipeHandler, c *gin.Context, userID, recipeID uint) error {
		return h.recipes.AddFavorite(c.Request.Context(), userID, recipeID)
	})
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.toggle(c, types.ResourceFavorite, false, func(h *RecipeHandler, c *gin.Context, userID, recipeID uint) error {
		return h.recipes.RemoveFavorite(c.Request.Context(), userID, recipeID)
	})
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.toggle(c, types.ResourceShoppingCart, true, func(h *RecipeHandler, c *gin.Context, userID, recipeID uint) error {
		return h.recipes.AddToCart(c.Request.Context(), userID, recipeID)
	})
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.toggle(c, types.ResourceShoppingCart, false, func(h *RecipeHandler, c *gin.Context, userID, recipeID uint) error {
		return h.recipes.RemoveFromCart(c.Request.Context(), userID, recipeID)
	})
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	list, err := h.shopping.Build(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", list.Filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", list.Content)
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
)

// TagHandler serves the read-only tag catalog.
type TagHandler struct {
	tags service.ITagService
}

func NewTagHandler(tags service.ITagService) *TagHandler {
	return &TagHandler{tags: tags}
}

func (h *TagHandler) RegisterRoutes(router *gin.RouterGroup) {
	tags := router.Group("/tags")
	{
		tags.GET("", h.ListTags)
		tags.GET("/:id", h.GetTag)
	}
}

func (h *TagHandler) ListTags(c *gin.Context) {
	tags, err := h.tags.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *TagHandler) GetTag(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		notFound(c)
		return
	}
	tag, err := h.tags.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// IngredientHandler serves the ingredient catalog and its name search.
type IngredientHandler struct {
	ingredients service.IIngredientService
}

func NewIngredientHandler(ingredients service.IIngredientService) *IngredientHandler {
	return &IngredientHandler{ingredients: ingredients}
}

func (h *IngredientHandler) RegisterRoutes(router *gin.RouterGroup) {
	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("", h.SearchIngredients)
		ingredients.GET("/:id", h.GetIngredient)
	}
}

func (h *IngredientHandler) SearchIngredients(c *gin.Context) {
	list, err := h.ingredients.Search(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *IngredientHandler) GetIngredient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		notFound(c)
		return
	}
	ing, err := h.ingredients.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}

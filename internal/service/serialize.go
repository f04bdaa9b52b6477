package service

import (
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// viewerFlags holds the viewer-relative booleans for one page of recipes.
// The zero value renders everything false, which is what anonymous viewers get.
type viewerFlags struct {
	favorited  map[uint]bool
	inCart     map[uint]bool
	subscribed map[uint]bool
}

func toTagResponse(t models.Tag) types.TagResponse {
	return types.TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func toIngredientResponse(i models.Ingredient) types.IngredientResponse {
	return types.IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func toUserResponse(u models.User, subscribed bool) types.UserResponse {
	return types.UserResponse{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func (s *RecipeService) toShort(r models.Recipe) types.RecipeShortResponse {
	return types.RecipeShortResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       s.images.URL(r.Image),
		CookingTime: r.CookingTime,
	}
}

func (s *RecipeService) toDetail(r models.Recipe, flags viewerFlags) types.RecipeResponse {
	tags := make([]types.TagResponse, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, toTagResponse(t))
	}

	ingredients := make([]types.RecipeIngredientResponse, 0, len(r.Ingredients))
	for _, ri := range r.Ingredients {
		ingredients = append(ingredients, types.RecipeIngredientResponse{
			ID:              ri.Ingredient.ID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		})
	}

	return types.RecipeResponse{
		ID:               r.ID,
		Tags:             tags,
		Author:           toUserResponse(r.Author, flags.subscribed[r.AuthorID]),
		Ingredients:      ingredients,
		IsFavorited:      flags.favorited[r.ID],
		IsInShoppingCart: flags.inCart[r.ID],
		Name:             r.Name,
		Image:            s.images.URL(r.Image),
		Text:             r.Text,
		CookingTime:      r.CookingTime,
		PubDate:          r.PubDate,
	}
}

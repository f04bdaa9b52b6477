package types

import "time"

type TagResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

type IngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// RecipeIngredientResponse embeds the ingredient with its per-recipe amount.
type RecipeIngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type UserResponse struct {
	Email        string `json:"email"`
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// RecipeResponse is the list/detail shape of a recipe.
type RecipeResponse struct {
	ID               uint                       `json:"id"`
	Tags             []TagResponse              `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
	PubDate          time.Time                  `json:"pub_date"`
}

// RecipeShortResponse is the compact shape.
type RecipeShortResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// SubscriptionResponse is an author as seen from a subscriber.
type SubscriptionResponse struct {
	UserResponse
	Recipes      []RecipeShortResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}

// Page is a paginated list body.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

package types

// IngredientAmount is one ingredient entry of a recipe write request.
type IngredientAmount struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeWriteRequest is the body of recipe create and update.
// Pointer and nil-slice fields distinguish "absent" from "empty".
type RecipeWriteRequest struct {
	Tags        []uint             `json:"tags"`
	Ingredients []IngredientAmount `json:"ingredients"`
	Image       *string            `json:"image"`
	Name        *string            `json:"name"`
	Text        *string            `json:"text"`
	CookingTime *int               `json:"cooking_time"`
}

// RegisterRequest is the body of user registration.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
	CurrentPassword string `json:"current_password" binding:"required"`
}

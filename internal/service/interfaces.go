package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for token issue and revocation
type IAuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
	GenerateToken(user *models.User) (string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// IUserService defines the interface for account operations
type IUserService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*types.UserResponse, error)
	Get(ctx context.Context, id uint, viewer *uint) (*types.UserResponse, error)
	List(ctx context.Context, viewer *uint, offset, limit int) ([]types.UserResponse, int64, error)
	SetPassword(ctx context.Context, userID uint, req *types.SetPasswordRequest) error
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	List(ctx context.Context, f RecipeFilter, viewer *uint, offset, limit int) ([]types.RecipeResponse, int64, error)
	Get(ctx context.Context, id uint, viewer *uint) (*types.RecipeResponse, error)
	GetShort(ctx context.Context, id uint) (*types.RecipeShortResponse, error)
	Create(ctx context.Context, authorID uint, req *types.RecipeWriteRequest) (uint, error)
	Update(ctx context.Context, id, callerID uint, req *types.RecipeWriteRequest) error
	Delete(ctx context.Context, id, callerID uint) error
	AddFavorite(ctx context.Context, userID, recipeID uint) error
	RemoveFavorite(ctx context.Context, userID, recipeID uint) error
	AddToCart(ctx context.Context, userID, recipeID uint) error
	RemoveFromCart(ctx context.Context, userID, recipeID uint) error
	FavoriteCounts(ctx context.Context) ([]RecipeFavoriteCount, error)
}

// ISubscriptionService defines the interface for following authors
type ISubscriptionService interface {
	Subscribe(ctx context.Context, subscriberID, authorID uint) error
	Unsubscribe(ctx context.Context, subscriberID, authorID uint) error
	Get(ctx context.Context, subscriberID, authorID uint, recipesLimit int) (*types.SubscriptionResponse, error)
	List(ctx context.Context, subscriberID uint, offset, limit, recipesLimit int) ([]types.SubscriptionResponse, int64, error)
}

type ITagService interface {
	List(ctx context.Context) ([]types.TagResponse, error)
	Get(ctx context.Context, id uint) (*types.TagResponse, error)
}

type IIngredientService interface {
	Search(ctx context.Context, name string) ([]types.IngredientResponse, error)
	Get(ctx context.Context, id uint) (*types.IngredientResponse, error)
}

type IShoppingListService interface {
	Build(ctx context.Context, userID uint) (*ShoppingList, error)
}

var (
	_ ISubscriptionService = (*SubscriptionService)(nil)
	_ IShoppingListService = (*ShoppingListService)(nil)
)

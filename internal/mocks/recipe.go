package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

var _ service.IRecipeService = (*MockRecipeService)(nil)

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) List(ctx context.Context, f service.RecipeFilter, viewer *uint, offset, limit int) ([]types.RecipeResponse, int64, error) {
	args := m.Called(ctx, f, viewer, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]types.RecipeResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecipeService) Get(ctx context.Context, id uint, viewer *uint) (*types.RecipeResponse, error) {
	args := m.Called(ctx, id, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) GetShort(ctx context.Context, id uint) (*types.RecipeShortResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeShortResponse), args.Error(1)
}

func (m *MockRecipeService) Create(ctx context.Context, authorID uint, req *types.RecipeWriteRequest) (uint, error) {
	args := m.Called(ctx, authorID, req)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockRecipeService) Update(ctx context.Context, id, callerID uint, req *types.RecipeWriteRequest) error {
	return m.Called(ctx, id, callerID, req).Error(0)
}

func (m *MockRecipeService) Delete(ctx context.Context, id, callerID uint) error {
	return m.Called(ctx, id, callerID).Error(0)
}

func (m *MockRecipeService) AddFavorite(ctx context.Context, userID, recipeID uint) error {
	return m.Called(ctx, userID, recipeID).Error(0)
}

func (m *MockRecipeService) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	return m.Called(ctx, userID, recipeID).Error(0)
}

func (m *MockRecipeService) AddToCart(ctx context.Context, userID, recipeID uint) error {
	return m.Called(ctx, userID, recipeID).Error(0)
}

func (m *MockRecipeService) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	return m.Called(ctx, userID, recipeID).Error(0)
}

func (m *MockRecipeService) FavoriteCounts(ctx context.Context) ([]service.RecipeFavoriteCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.RecipeFavoriteCount), args.Error(1)
}

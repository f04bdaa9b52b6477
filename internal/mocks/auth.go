package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

var _ service.IAuthService = (*MockAuthService)(nil)

// MockAuthService is a mock implementation of the IAuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *types.TokenClaims) error {
	args := m.Called(ctx, claims)
	return args.Error(0)
}

func (m *MockAuthService) GenerateToken(user *models.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenClaims), args.Error(1)
}

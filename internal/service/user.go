package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// reservedUsername collides with the /users/me route.
const reservedUsername = "me"

type UserService struct {
	db            *gorm.DB
	subscriptions *Toggle[models.Subscription]
	hashCost      int
}

var _ IUserService = (*UserService)(nil)

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{
		db:            db,
		subscriptions: newSubscriptionToggle(db),
		hashCost:      bcrypt.DefaultCost,
	}
}

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.hashCost = cost
	return s
}

func (s *UserService) Register(ctx context.Context, req *types.RegisterRequest) (*types.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	verr := NewValidationError()
	switch {
	case !usernamePattern.MatchString(username):
		verr.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	case strings.EqualFold(username, reservedUsername):
		verr.Add("username", fmt.Sprintf("Username %q is not allowed.", reservedUsername))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var taken []models.User
	if err := db.Where("email = ? OR username = ?", email, username).Find(&taken).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	for _, u := range taken {
		if u.Email == email {
			verr.Add("email", "A user with that email already exists.")
		}
		if u.Username == username {
			verr.Add("username", "A user with that username already exists.")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		Username:     username,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, FieldError("non_field_errors", "A user with that email or username already exists.")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logging.Ctx(ctx).Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	resp := toUserResponse(user, false)
	return &resp, nil
}

// Get renders user id as seen by viewer.
func (s *UserService) Get(ctx context.Context, id uint, viewer *uint) (*types.UserResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user", id)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	subscribed := false
	if viewer != nil {
		var err error
		if subscribed, err = s.subscriptions.Exists(ctx, *viewer, id); err != nil {
			return nil, err
		}
	}
	resp := toUserResponse(user, subscribed)
	return &resp, nil
}

func (s *UserService) List(ctx context.Context, viewer *uint, offset, limit int) ([]types.UserResponse, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	if err := db.Order("id").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	subscribed := map[uint]bool{}
	if viewer != nil && len(users) > 0 {
		ids := make([]uint, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		var err error
		if subscribed, err = s.subscriptions.Present(ctx, *viewer, ids); err != nil {
			return nil, 0, err
		}
	}

	out := make([]types.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u, subscribed[u.ID]))
	}
	return out, total, nil
}

func (s *UserService) SetPassword(ctx context.Context, userID uint, req *types.SetPasswordRequest) error {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("user", userID)
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return FieldError("current_password", "Invalid password.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.hashCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := db.Model(&user).Update("password_hash", string(hash)).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

const invalidCredentials = "Unable to log in with provided credentials."

type AuthService struct {
	db        *gorm.DB
	jwtSecret string
	ttl       time.Duration
	denylist  TokenDenylist
	now       func() time.Time
}

var _ IAuthService = (*AuthService)(nil)

func NewAuthService(db *gorm.DB, jwtSecret string, ttl time.Duration, denylist TokenDenylist) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
		ttl:       ttl,
		denylist:  denylist,
		now:       time.Now,
	}
}

// Login exchanges email and password for a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", FieldError("non_field_errors", invalidCredentials)
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", FieldError("non_field_errors", invalidCredentials)
	}

	token, err := s.GenerateToken(&user)
	if err != nil {
		return "", err
	}
	logging.Ctx(ctx).Info().Uint("user_id", user.ID).Msg("user logged in")
	return token, nil
}

func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := s.now()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID:   user.ID,
		Username: user.Username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies the signature and expiry, then rejects revoked
// tokens and tokens whose user no longer exists.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == 0 || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check token: %w", err)
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", claims.UserID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to load token user: %w", err)
	}
	if count == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *types.TokenClaims) error {
	if s.denylist == nil || claims == nil || claims.ID == "" {
		return nil
	}
	until := s.now().Add(s.ttl)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := s.denylist.Revoke(ctx, claims.ID, until); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	logging.Ctx(ctx).Info().Uint("user_id", claims.UserID).Msg("user logged out")
	return nil
}

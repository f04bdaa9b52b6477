package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

type SubscriptionService struct {
	db            *gorm.DB
	images        *ImageService
	subscriptions *Toggle[models.Subscription]
}

func NewSubscriptionService(db *gorm.DB, images *ImageService) *SubscriptionService {
	return &SubscriptionService{
		db:            db,
		images:        images,
		subscriptions: newSubscriptionToggle(db),
	}
}

func (s *SubscriptionService) findUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user", id)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// Subscribe makes subscriberID follow authorID.
// Self-subscription is rejected before the presence check.
func (s *SubscriptionService) Subscribe(ctx context.Context, subscriberID, authorID uint) error {
	if _, err := s.findUser(ctx, authorID); err != nil {
		return err
	}
	if subscriberID == authorID {
		return conflict("you cannot subscribe to yourself")
	}
	return s.subscriptions.Add(ctx, subscriberID, authorID)
}

func (s *SubscriptionService) Unsubscribe(ctx context.Context, subscriberID, authorID uint) error {
	if _, err := s.findUser(ctx, authorID); err != nil {
		return err
	}
	if subscriberID == authorID {
		return conflict("you cannot unsubscribe from yourself")
	}
	return s.subscriptions.Remove(ctx, subscriberID, authorID)
}

// Get renders authorID as seen by subscriberID. recipesLimit < 0 means no cap.
func (s *SubscriptionService) Get(ctx context.Context, subscriberID, authorID uint, recipesLimit int) (*types.SubscriptionResponse, error) {
	author, err := s.findUser(ctx, authorID)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.subscriptions.Exists(ctx, subscriberID, authorID)
	if err != nil {
		return nil, err
	}

	out, err := s.render(ctx, []models.User{*author}, map[uint]bool{authorID: subscribed}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// List returns one page of the authors subscriberID follows, in subscription order.
func (s *SubscriptionService) List(ctx context.Context, subscriberID uint, offset, limit, recipesLimit int) ([]types.SubscriptionResponse, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Subscription{}).Where("subscriber_id = ?", subscriberID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	var authors []models.User
	err := db.Model(&models.User{}).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.subscriber_id = ?", subscriberID).
		Order("subscriptions.id").
		Offset(offset).
		Limit(limit).
		Find(&authors).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	subscribed := make(map[uint]bool, len(authors))
	for _, a := range authors {
		subscribed[a.ID] = true
	}

	out, err := s.render(ctx, authors, subscribed, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *SubscriptionService) render(ctx context.Context, authors []models.User, subscribed map[uint]bool, recipesLimit int) ([]types.SubscriptionResponse, error) {
	out := make([]types.SubscriptionResponse, 0, len(authors))
	if len(authors) == 0 {
		return out, nil
	}

	ids := make([]uint, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}

	var counts []struct {
		AuthorID uint
		Total    int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", ids).
		Group("author_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}
	recipeCounts := make(map[uint]int64, len(counts))
	for _, c := range counts {
		recipeCounts[c.AuthorID] = c.Total
	}

	var recipes []models.Recipe
	err = s.db.WithContext(ctx).
		Where("author_id IN ?", ids).
		Order("pub_date DESC").
		Order("id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}
	byAuthor := make(map[uint][]types.RecipeShortResponse, len(authors))
	for _, r := range recipes {
		if recipesLimit >= 0 && len(byAuthor[r.AuthorID]) >= recipesLimit {
			continue
		}
		byAuthor[r.AuthorID] = append(byAuthor[r.AuthorID], types.RecipeShortResponse{
			ID:          r.ID,
			Name:        r.Name,
			Image:       s.images.URL(r.Image),
			CookingTime: r.CookingTime,
		})
	}

	for _, a := range authors {
		short := byAuthor[a.ID]
		if short == nil {
			short = []types.RecipeShortResponse{}
		}
		out = append(out, types.SubscriptionResponse{
			UserResponse: toUserResponse(a, subscribed[a.ID]),
			Recipes:      short,
			RecipesCount: recipeCounts[a.ID],
		})
	}
	return out, nil
}

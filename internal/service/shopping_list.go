package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
)

// ShoppingListItem is one aggregated line of a shopping list.
type ShoppingListItem struct {
	Name            string
	MeasurementUnit string
	Amount          int64
}

// ShoppingList is a rendered export ready to be sent as a download.
type ShoppingList struct {
	Filename string
	Content  []byte
}

type ShoppingListService struct {
	db   *gorm.DB
	site config.SiteConfig
	now  func() time.Time
}

func NewShoppingListService(db *gorm.DB, site config.SiteConfig) *ShoppingListService {
	return &ShoppingListService{db: db, site: site, now: time.Now}
}

// Aggregate sums ingredient amounts across every recipe in the user's cart,
// one row per (name, measurement unit).
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uint) ([]ShoppingListItem, error) {
	var items []ShoppingListItem
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients AS ri").
		Select("i.name AS name, i.measurement_unit AS measurement_unit, SUM(ri.amount) AS amount").
		Joins("JOIN ingredients AS i ON i.id = ri.ingredient_id").
		Joins("JOIN shopping_cart_entries AS sc ON sc.recipe_id = ri.recipe_id").
		Where("sc.user_id = ?", userID).
		Group("i.name, i.measurement_unit").
		Order("i.name").
		Order("i.measurement_unit").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate shopping list: %w", err)
	}
	return items, nil
}

// Build renders the user's shopping list. An empty cart yields ErrEmptyCart.
func (s *ShoppingListService) Build(ctx context.Context, userID uint) (*ShoppingList, error) {
	list, err := s.build(ctx, userID)
	switch {
	case err == nil:
		metrics.ShoppingListExports.WithLabelValues("ok").Inc()
	case errors.Is(err, ErrEmptyCart):
		metrics.ShoppingListExports.WithLabelValues("empty").Inc()
	default:
		metrics.ShoppingListExports.WithLabelValues("error").Inc()
	}
	return list, err
}

func (s *ShoppingListService) build(ctx context.Context, userID uint) (*ShoppingList, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user", userID)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	items, err := s.Aggregate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	return &ShoppingList{
		Filename: user.Username + "_shopping_list.txt",
		Content:  []byte(s.Render(user, items)),
	}, nil
}

// Render formats the list as plain text.
func (s *ShoppingListService) Render(user models.User, items []ShoppingListItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Shopping list for: %s\n", user.FullName())
	fmt.Fprintf(&b, "Date: %s\n\n", s.now().Format("2006-01-02"))
	for _, item := range items {
		fmt.Fprintf(&b, "%s (%s) — %d\n", item.Name, item.MeasurementUnit, item.Amount)
	}
	if s.site.ShoppingListFooter != "" {
		fmt.Fprintf(&b, "\n%s\n", s.site.ShoppingListFooter)
	}
	return b.String()
}

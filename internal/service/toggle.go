package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
)

// Toggle manages a presence-only join row keyed by (owner, target).
// The unique index on (owner, target) is authoritative; the pre-insert check only
// produces the friendlier error earlier.
type Toggle[T any] struct {
	db           *gorm.DB
	relation     string
	ownerColumn  string
	targetColumn string
	build        func(owner, target uint) *T
	presentMsg   string
	absentMsg    string
}

func newFavoriteToggle(db *gorm.DB) *Toggle[models.Favorite] {
	return &Toggle[models.Favorite]{
		db:           db,
		relation:     "favorite",
		ownerColumn:  "user_id",
		targetColumn: "recipe_id",
		build: func(owner, target uint) *models.Favorite {
			return &models.Favorite{UserID: owner, RecipeID: target}
		},
		presentMsg: "recipe is already in favorites",
		absentMsg:  "recipe is not in favorites",
	}
}

func newCartToggle(db *gorm.DB) *Toggle[models.ShoppingCartEntry] {
	return &Toggle[models.ShoppingCartEntry]{
		db:           db,
		relation:     "shopping_cart",
		ownerColumn:  "user_id",
		targetColumn: "recipe_id",
		build: func(owner, target uint) *models.ShoppingCartEntry {
			return &models.ShoppingCartEntry{UserID: owner, RecipeID: target}
		},
		presentMsg: "recipe is already in the shopping cart",
		absentMsg:  "recipe is not in the shopping cart",
	}
}

func newSubscriptionToggle(db *gorm.DB) *Toggle[models.Subscription] {
	return &Toggle[models.Subscription]{
		db:           db,
		relation:     "subscription",
		ownerColumn:  "subscriber_id",
		targetColumn: "author_id",
		build: func(owner, target uint) *models.Subscription {
			return &models.Subscription{SubscriberID: owner, AuthorID: target}
		},
		presentMsg: "already subscribed to this author",
		absentMsg:  "not subscribed to this author",
	}
}

func (t *Toggle[T]) scope(db *gorm.DB, owner, target uint) *gorm.DB {
	return db.Where(t.ownerColumn+" = ? AND "+t.targetColumn+" = ?", owner, target)
}

// Add moves the pair from absent to present.
func (t *Toggle[T]) Add(ctx context.Context, owner, target uint) error {
	err := t.add(ctx, owner, target)
	t.observe("add", err)
	return err
}

func (t *Toggle[T]) add(ctx context.Context, owner, target uint) error {
	db := t.db.WithContext(ctx)

	present, err := t.Exists(ctx, owner, target)
	if err != nil {
		return err
	}
	if present {
		return conflict("%s", t.presentMsg)
	}

	if err := db.Omit(clause.Associations).Create(t.build(owner, target)).Error; err != nil {
		if isUniqueViolation(err) {
			return conflict("%s", t.presentMsg)
		}
		return fmt.Errorf("failed to add %s: %w", t.relation, err)
	}
	return nil
}

// Remove moves the pair from present to absent.
func (t *Toggle[T]) Remove(ctx context.Context, owner, target uint) error {
	err := t.remove(ctx, owner, target)
	t.observe("remove", err)
	return err
}

func (t *Toggle[T]) remove(ctx context.Context, owner, target uint) error {
	res := t.scope(t.db.WithContext(ctx), owner, target).Delete(new(T))
	if res.Error != nil {
		return fmt.Errorf("failed to remove %s: %w", t.relation, res.Error)
	}
	if res.RowsAffected == 0 {
		return conflict("%s", t.absentMsg)
	}
	return nil
}

func (t *Toggle[T]) Exists(ctx context.Context, owner, target uint) (bool, error) {
	var count int64
	if err := t.scope(t.db.WithContext(ctx), owner, target).Model(new(T)).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check %s: %w", t.relation, err)
	}
	return count > 0, nil
}

// Present reports which of targets are present for owner, in one query.
func (t *Toggle[T]) Present(ctx context.Context, owner uint, targets []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(targets))
	if len(targets) == 0 {
		return out, nil
	}

	var ids []uint
	err := t.db.WithContext(ctx).
		Model(new(T)).
		Where(t.ownerColumn+" = ? AND "+t.targetColumn+" IN ?", owner, targets).
		Pluck(t.targetColumn, &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load %s flags: %w", t.relation, err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// TargetsOf returns a subquery selecting every target of owner.
func (t *Toggle[T]) TargetsOf(owner uint) *gorm.DB {
	return t.db.Session(&gorm.Session{NewDB: true}).
		Model(new(T)).
		Select(t.targetColumn).
		Where(t.ownerColumn+" = ?", owner)
}

func (t *Toggle[T]) observe(action string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrConflict):
		outcome = "conflict"
	default:
		outcome = "error"
	}
	metrics.ToggleOperations.WithLabelValues(t.relation, action, outcome).Inc()
}

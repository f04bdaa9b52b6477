package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

type IngredientService struct {
	db *gorm.DB
}

var _ IIngredientService = (*IngredientService)(nil)

func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns ingredients whose name contains name, case-insensitively.
// Names starting with name come first; ties are ordered by name.
func (s *IngredientService) Search(ctx context.Context, name string) ([]types.IngredientResponse, error) {
	query := s.db.WithContext(ctx).Model(&models.Ingredient{})

	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		query = query.Order("name").Order("id")
	} else {
		escaped := likeEscaper.Replace(name)
		query = query.
			Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escaped+"%").
			Clauses(clause.OrderBy{Expression: clause.Expr{
				SQL:                `CASE WHEN LOWER(name) LIKE ? ESCAPE '\' THEN 0 ELSE 1 END, name, id`,
				Vars:               []any{escaped + "%"},
				WithoutParentheses: true,
			}})
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to search ingredients: %w", err)
	}

	out := make([]types.IngredientResponse, 0, len(ingredients))
	for _, i := range ingredients {
		out = append(out, toIngredientResponse(i))
	}
	return out, nil
}

func (s *IngredientService) Get(ctx context.Context, id uint) (*types.IngredientResponse, error) {
	var ing models.Ingredient
	if err := s.db.WithContext(ctx).First(&ing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("ingredient", id)
		}
		return nil, fmt.Errorf("failed to load ingredient: %w", err)
	}
	resp := toIngredientResponse(ing)
	return &resp, nil
}

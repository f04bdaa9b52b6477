package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

const maxRecipeNameLength = 200

type RecipeService struct {
	db            *gorm.DB
	images        *ImageService
	favorites     *Toggle[models.Favorite]
	cart          *Toggle[models.ShoppingCartEntry]
	subscriptions *Toggle[models.Subscription]
}

var _ IRecipeService = (*RecipeService)(nil)

func NewRecipeService(db *gorm.DB, images *ImageService) *RecipeService {
	return &RecipeService{
		db:            db,
		images:        images,
		favorites:     newFavoriteToggle(db),
		cart:          newCartToggle(db),
		subscriptions: newSubscriptionToggle(db),
	}
}

// RecipeFavoriteCount is one row of the favorites report.
type RecipeFavoriteCount struct {
	RecipeID      uint
	Name          string
	FavoriteCount int64
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

// List returns one page of recipes, newest first, and the total number of matches.
func (s *RecipeService) List(ctx context.Context, f RecipeFilter, viewer *uint, offset, limit int) ([]types.RecipeResponse, int64, error) {
	base := func() (*gorm.DB, error) {
		return s.applyFilter(s.db.WithContext(ctx).Model(&models.Recipe{}), f, viewer)
	}

	countQuery, err := base()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	pageQuery, err := base()
	if err != nil {
		return nil, 0, err
	}
	var recipes []models.Recipe
	err = withRelations(pageQuery).
		Order("recipes.pub_date DESC").
		Order("recipes.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}

	out, err := s.renderDetails(ctx, recipes, viewer)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Get returns the detail shape of one recipe for viewer.
func (s *RecipeService) Get(ctx context.Context, id uint, viewer *uint) (*types.RecipeResponse, error) {
	var recipe models.Recipe
	if err := withRelations(s.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("recipe", id)
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}

	out, err := s.renderDetails(ctx, []models.Recipe{recipe}, viewer)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// GetShort returns the compact shape of one recipe.
func (s *RecipeService) GetShort(ctx context.Context, id uint) (*types.RecipeShortResponse, error) {
	recipe, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	short := s.toShort(*recipe)
	return &short, nil
}

func (s *RecipeService) find(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("recipe", id)
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return &recipe, nil
}

func (s *RecipeService) renderDetails(ctx context.Context, recipes []models.Recipe, viewer *uint) ([]types.RecipeResponse, error) {
	var flags viewerFlags
	if viewer != nil && len(recipes) > 0 {
		ids := make([]uint, 0, len(recipes))
		authorIDs := make([]uint, 0, len(recipes))
		for _, r := range recipes {
			ids = append(ids, r.ID)
			authorIDs = append(authorIDs, r.AuthorID)
		}

		var err error
		if flags.favorited, err = s.favorites.Present(ctx, *viewer, ids); err != nil {
			return nil, err
		}
		if flags.inCart, err = s.cart.Present(ctx, *viewer, ids); err != nil {
			return nil, err
		}
		if flags.subscribed, err = s.subscriptions.Present(ctx, *viewer, authorIDs); err != nil {
			return nil, err
		}
	}

	out := make([]types.RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, s.toDetail(r, flags))
	}
	return out, nil
}

// Create validates req and stores a new recipe owned by authorID.
func (s *RecipeService) Create(ctx context.Context, authorID uint, req *types.RecipeWriteRequest) (uint, error) {
	img, err := s.validateWrite(ctx, req, true)
	if err != nil {
		return 0, err
	}

	key, err := s.images.Store(ctx, img)
	if err != nil {
		return 0, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        strings.TrimSpace(*req.Name),
		Image:       key,
		Text:        *req.Text,
		CookingTime: *req.CookingTime,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		return replaceComponents(tx, recipe.ID, req)
	})
	if err != nil {
		s.images.Discard(ctx, key)
		return 0, fmt.Errorf("failed to create recipe: %w", err)
	}

	logging.Ctx(ctx).Info().Uint("recipe_id", recipe.ID).Uint("author_id", authorID).Msg("recipe created")
	return recipe.ID, nil
}

// Update replaces a recipe's fields, tags and ingredients.
// The recipe must exist and belong to callerID before anything is validated.
func (s *RecipeService) Update(ctx context.Context, id, callerID uint, req *types.RecipeWriteRequest) error {
	recipe, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if recipe.AuthorID != callerID {
		return ErrForbidden
	}

	img, err := s.validateWrite(ctx, req, false)
	if err != nil {
		return err
	}

	updates := map[string]any{"cooking_time": *req.CookingTime}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Text != nil {
		updates["text"] = *req.Text
	}

	var newKey string
	if img != nil {
		if newKey, err = s.images.Store(ctx, img); err != nil {
			return err
		}
		updates["image"] = newKey
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Recipe{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		return replaceComponents(tx, id, req)
	})
	if err != nil {
		s.images.Discard(ctx, newKey)
		return fmt.Errorf("failed to update recipe: %w", err)
	}

	if newKey != "" {
		s.images.Discard(ctx, recipe.Image)
	}
	return nil
}

// Delete removes a recipe owned by callerID together with every row that references it.
func (s *RecipeService) Delete(ctx context.Context, id, callerID uint) error {
	recipe, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if recipe.AuthorID != callerID {
		return ErrForbidden
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []any{
			&models.Favorite{},
			&models.ShoppingCartEntry{},
			&models.RecipeTag{},
			&models.RecipeIngredient{},
		} {
			if err := tx.Where("recipe_id = ?", id).Delete(dependent).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Recipe{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	s.images.Discard(ctx, recipe.Image)
	return nil
}

func replaceComponents(tx *gorm.DB, recipeID uint, req *types.RecipeWriteRequest) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
		return err
	}
	tags := make([]models.RecipeTag, 0, len(req.Tags))
	for _, tagID := range req.Tags {
		tags = append(tags, models.RecipeTag{RecipeID: recipeID, TagID: tagID})
	}
	if err := tx.Create(&tags).Error; err != nil {
		return err
	}

	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return err
	}
	rows := make([]models.RecipeIngredient, 0, len(req.Ingredients))
	for _, ing := range req.Ingredients {
		rows = append(rows, models.RecipeIngredient{RecipeID: recipeID, IngredientID: ing.ID, Amount: ing.Amount})
	}
	return tx.Omit(clause.Associations).Create(&rows).Error
}

// validateWrite checks req and decodes its image.
// On update, name, text and image may be omitted; tags, ingredients and cooking_time may not.
func (s *RecipeService) validateWrite(ctx context.Context, req *types.RecipeWriteRequest, creating bool) (*ProcessedImage, error) {
	verr := NewValidationError()

	if creating || req.Name != nil {
		name := ""
		if req.Name != nil {
			name = strings.TrimSpace(*req.Name)
		}
		switch {
		case name == "":
			verr.Add("name", "This field is required.")
		case utf8.RuneCountInString(name) > maxRecipeNameLength:
			verr.Add("name", fmt.Sprintf("Ensure this field has no more than %d characters.", maxRecipeNameLength))
		}
	}

	if creating || req.Text != nil {
		if req.Text == nil || strings.TrimSpace(*req.Text) == "" {
			verr.Add("text", "This field is required.")
		}
	}

	switch {
	case req.CookingTime == nil:
		verr.Add("cooking_time", "This field is required.")
	case *req.CookingTime < 1:
		verr.Add("cooking_time", "Ensure this value is greater than or equal to 1.")
	}

	if err := s.validateTags(ctx, req.Tags, verr); err != nil {
		return nil, err
	}
	if err := s.validateIngredients(ctx, req.Ingredients, verr); err != nil {
		return nil, err
	}

	var img *ProcessedImage
	switch {
	case req.Image == nil && creating:
		verr.Add("image", "This field is required.")
	case req.Image != nil:
		decoded, err := s.images.Decode(*req.Image)
		if err != nil {
			if !errors.Is(err, errInvalidImage) {
				return nil, err
			}
			verr.Add("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
		}
		img = decoded
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return img, nil
}

func (s *RecipeService) validateTags(ctx context.Context, ids []uint, verr *ValidationError) error {
	if ids == nil {
		verr.Add("tags", "This field is required.")
		return nil
	}
	if len(ids) == 0 {
		verr.Add("tags", "This list may not be empty.")
		return nil
	}
	if hasDuplicates(ids) {
		verr.Add("tags", "Tags must not repeat.")
		return nil
	}

	missing, err := s.missingIDs(ctx, &models.Tag{}, ids)
	if err != nil {
		return err
	}
	for _, id := range missing {
		verr.Add("tags", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
	}
	return nil
}

func (s *RecipeService) validateIngredients(ctx context.Context, items []types.IngredientAmount, verr *ValidationError) error {
	if items == nil {
		verr.Add("ingredients", "This field is required.")
		return nil
	}
	if len(items) == 0 {
		verr.Add("ingredients", "This list may not be empty.")
		return nil
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
		if item.Amount < 1 {
			verr.Add("ingredients", fmt.Sprintf("Amount of ingredient %d must be at least 1.", item.ID))
		}
	}
	if hasDuplicates(ids) {
		verr.Add("ingredients", "Ingredients must not repeat.")
		return nil
	}

	missing, err := s.missingIDs(ctx, &models.Ingredient{}, ids)
	if err != nil {
		return err
	}
	for _, id := range missing {
		verr.Add("ingredients", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
	}
	return nil
}

// missingIDs returns the ids that have no row in model's table, in input order.
func (s *RecipeService) missingIDs(ctx context.Context, model any, ids []uint) ([]uint, error) {
	var found []uint
	if err := s.db.WithContext(ctx).Model(model).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, fmt.Errorf("failed to look up ids: %w", err)
	}
	present := make(map[uint]bool, len(found))
	for _, id := range found {
		present[id] = true
	}

	var missing []uint
	for _, id := range ids {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func hasDuplicates(ids []uint) bool {
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}

// AddFavorite puts a recipe in the user's favorites. Authors cannot favorite their own recipes.
func (s *RecipeService) AddFavorite(ctx context.Context, userID, recipeID uint) error {
	recipe, err := s.find(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe.AuthorID == userID {
		return conflict("you cannot add your own recipe to favorites")
	}
	return s.favorites.Add(ctx, userID, recipeID)
}

func (s *RecipeService) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	if _, err := s.find(ctx, recipeID); err != nil {
		return err
	}
	return s.favorites.Remove(ctx, userID, recipeID)
}

// AddToCart puts a recipe in the user's shopping cart. Authors cannot cart their own recipes.
func (s *RecipeService) AddToCart(ctx context.Context, userID, recipeID uint) error {
	recipe, err := s.find(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe.AuthorID == userID {
		return conflict("you cannot add your own recipe to the shopping cart")
	}
	return s.cart.Add(ctx, userID, recipeID)
}

func (s *RecipeService) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	if _, err := s.find(ctx, recipeID); err != nil {
		return err
	}
	return s.cart.Remove(ctx, userID, recipeID)
}

// FavoriteCounts reports how many users favorited each recipe, most popular first.
func (s *RecipeService) FavoriteCounts(ctx context.Context) ([]RecipeFavoriteCount, error) {
	var out []RecipeFavoriteCount
	err := s.db.WithContext(ctx).
		Table("recipes").
		Select("recipes.id AS recipe_id, recipes.name AS name, COUNT(favorites.id) AS favorite_count").
		Joins("LEFT JOIN favorites ON favorites.recipe_id = recipes.id").
		Group("recipes.id, recipes.name").
		Order("favorite_count DESC").
		Order("recipes.id").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count favorites: %w", err)
	}
	return out, nil
}

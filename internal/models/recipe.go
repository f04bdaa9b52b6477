package models

import "time"

type Recipe struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	AuthorID    uint               `gorm:"not null;index" json:"author_id"`
	Author      User               `gorm:"constraint:OnDelete:CASCADE" json:"author"`
	Name        string             `gorm:"size:200;not null" json:"name"`
	Image       string             `gorm:"size:255;not null" json:"image"`
	Text        string             `gorm:"type:text;not null" json:"text"`
	CookingTime int                `gorm:"not null;check:cooking_time >= 1" json:"cooking_time"`
	PubDate     time.Time          `gorm:"autoCreateTime;index" json:"pub_date"`
	Tags        []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"tags"`
	Ingredients []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredients"`
}

// RecipeTag is a row of the recipe_tags join table managed by Recipe.Tags.
type RecipeTag struct {
	RecipeID uint `gorm:"primaryKey"`
	TagID    uint `gorm:"primaryKey"`
}

func (RecipeTag) TableName() string {
	return "recipe_tags"
}

// RecipeIngredient carries the per-recipe amount of an ingredient.
type RecipeIngredient struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredients_recipe_ingredient" json:"recipe_id"`
	IngredientID uint       `gorm:"not null;index;uniqueIndex:idx_recipe_ingredients_recipe_ingredient" json:"ingredient_id"`
	Ingredient   Ingredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredient"`
	Amount       int        `gorm:"not null;check:amount >= 1" json:"amount"`
}

type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorites_user_recipe" json:"user_id"`
	RecipeID  uint      `gorm:"not null;index;uniqueIndex:idx_favorites_user_recipe" json:"recipe_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Recipe    Recipe    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type ShoppingCartEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_shopping_cart_entries_user_recipe" json:"user_id"`
	RecipeID  uint      `gorm:"not null;index;uniqueIndex:idx_shopping_cart_entries_user_recipe" json:"recipe_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Recipe    Recipe    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// All lists every model in dependency order for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Subscription{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&RecipeIngredient{},
		&Favorite{},
		&ShoppingCartEntry{},
	}
}

package testdb

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/models"
)

// Password is the plain-text password of every fixture user.
const Password = "s3cret-pass"

var seq atomic.Int64

func next() int64 {
	return seq.Add(1)
}

// CreateUser inserts a user with a unique username and email.
func CreateUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Email:        fmt.Sprintf("%s-%d@example.com", username, next()),
		Username:     username,
		FirstName:    "Test",
		LastName:     username,
		PasswordHash: string(hash),
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// CreateTag inserts a tag whose slug equals its name.
func CreateTag(t *testing.T, db *gorm.DB, name string) models.Tag {
	t.Helper()
	tag := models.Tag{Name: name, Color: "#49B64E", Slug: name}
	require.NoError(t, db.Create(&tag).Error)
	return tag
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) models.Ingredient {
	t.Helper()
	ing := models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(&ing).Error)
	return ing
}

// Amount pairs an ingredient with its per-recipe amount.
type Amount struct {
	Ingredient models.Ingredient
	Amount     int
}

// CreateRecipe inserts a recipe with its tag and ingredient rows.
func CreateRecipe(t *testing.T, db *gorm.DB, author models.User, name string, tags []models.Tag, amounts ...Amount) models.Recipe {
	t.Helper()

	recipe := models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Image:       "recipes/images/" + name + ".png",
		Text:        "Cook " + name,
		CookingTime: 10,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(&recipe).Error)

	for _, tag := range tags {
		require.NoError(t, db.Create(&models.RecipeTag{RecipeID: recipe.ID, TagID: tag.ID}).Error)
	}
	for _, a := range amounts {
		row := models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: a.Ingredient.ID, Amount: a.Amount}
		require.NoError(t, db.Omit(clause.Associations).Create(&row).Error)
	}
	return recipe
}

func AddFavorite(t *testing.T, db *gorm.DB, user models.User, recipe models.Recipe) {
	t.Helper()
	row := models.Favorite{UserID: user.ID, RecipeID: recipe.ID}
	require.NoError(t, db.Omit(clause.Associations).Create(&row).Error)
}

func AddToCart(t *testing.T, db *gorm.DB, user models.User, recipe models.Recipe) {
	t.Helper()
	row := models.ShoppingCartEntry{UserID: user.ID, RecipeID: recipe.ID}
	require.NoError(t, db.Omit(clause.Associations).Create(&row).Error)
}

func Subscribe(t *testing.T, db *gorm.DB, subscriber, author models.User) {
	t.Helper()
	row := models.Subscription{SubscriberID: subscriber.ID, AuthorID: author.ID}
	require.NoError(t, db.Omit(clause.Associations).Create(&row).Error)
}

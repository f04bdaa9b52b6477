package service

import (
	"net/url"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// RecipeFilter narrows the recipe list.
type RecipeFilter struct {
	Tags             []string
	AuthorID         *uint
	IsFavorited      *bool
	IsInShoppingCart *bool
}

// ParseRecipeFilter reads tags, author, is_favorited and is_in_shopping_cart.
// Unknown parameters are ignored.
func ParseRecipeFilter(q url.Values) (RecipeFilter, error) {
	var f RecipeFilter
	verr := NewValidationError()

	for _, slug := range q["tags"] {
		if slug = strings.TrimSpace(slug); slug != "" {
			f.Tags = append(f.Tags, slug)
		}
	}

	if raw := q.Get("author"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			verr.Add("author", "Select a valid choice.")
		} else {
			author := uint(id)
			f.AuthorID = &author
		}
	}

	var err error
	if f.IsFavorited, err = parseFlag(q.Get("is_favorited")); err != nil {
		verr.Add("is_favorited", "Must be 0, 1, true or false.")
	}
	if f.IsInShoppingCart, err = parseFlag(q.Get("is_in_shopping_cart")); err != nil {
		verr.Add("is_in_shopping_cart", "Must be 0, 1, true or false.")
	}

	return f, verr.OrNil()
}

func parseFlag(raw string) (*bool, error) {
	var v bool
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return nil, nil
	case "1", "true":
		v = true
	case "0", "false":
		v = false
	default:
		return nil, strconv.ErrSyntax
	}
	return &v, nil
}

// NeedsViewer reports whether the filter only makes sense for an authenticated caller.
func (f RecipeFilter) NeedsViewer() bool {
	return (f.IsFavorited != nil && *f.IsFavorited) || (f.IsInShoppingCart != nil && *f.IsInShoppingCart)
}

// applyFilter narrows query, which must select from recipes.
func (s *RecipeService) applyFilter(query *gorm.DB, f RecipeFilter, viewer *uint) (*gorm.DB, error) {
	if f.NeedsViewer() && viewer == nil {
		return nil, ErrUnauthorized
	}

	if len(f.Tags) > 0 {
		tagged := s.db.Session(&gorm.Session{NewDB: true}).
			Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.Tags)
		query = query.Where("recipes.id IN (?)", tagged)
	}

	if f.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *f.AuthorID)
	}

	if f.IsFavorited != nil && *f.IsFavorited {
		query = query.Where("recipes.id IN (?)", s.favorites.TargetsOf(*viewer))
	}

	if f.IsInShoppingCart != nil && *f.IsInShoppingCart {
		query = query.Where("recipes.id IN (?)", s.cart.TargetsOf(*viewer))
	}

	return query, nil
}

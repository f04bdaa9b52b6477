package service_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/service"
)

func TestParseRecipeFilter(t *testing.T) {
	q := url.Values{
		"tags":                {"breakfast", " ", "lunch"},
		"author":              {"7"},
		"is_favorited":        {"1"},
		"is_in_shopping_cart": {"false"},
		"unknown":             {"ignored"},
	}

	f, err := service.ParseRecipeFilter(q)
	require.NoError(t, err)
	assert.Equal(t, []string{"breakfast", "lunch"}, f.Tags)
	require.NotNil(t, f.AuthorID)
	assert.EqualValues(t, 7, *f.AuthorID)
	require.NotNil(t, f.IsFavorited)
	assert.True(t, *f.IsFavorited)
	require.NotNil(t, f.IsInShoppingCart)
	assert.False(t, *f.IsInShoppingCart)
	assert.True(t, f.NeedsViewer())
}

func TestParseRecipeFilterEmpty(t *testing.T) {
	f, err := service.ParseRecipeFilter(url.Values{})
	require.NoError(t, err)
	assert.Empty(t, f.Tags)
	assert.Nil(t, f.AuthorID)
	assert.False(t, f.NeedsViewer())
}

func TestParseRecipeFilterInvalid(t *testing.T) {
	_, err := service.ParseRecipeFilter(url.Values{
		"author":       {"abc"},
		"is_favorited": {"yes"},
	})

	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "author")
	assert.Contains(t, verr.Fields, "is_favorited")
	assert.NotContains(t, verr.Fields, "is_in_shopping_cart")
}

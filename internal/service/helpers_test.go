package service_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testdb"
	"github.com/pageza/foodgram/backend/internal/types"
)

// memStore is an in-memory ImageStore.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (m *memStore) Save(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStore) URL(key string) string {
	return "http://testserver/media/" + key
}

func (m *memStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func (m *memStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// pngDataURI encodes a solid w x h png as a data URI.
func pngDataURI(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

type recipeEnv struct {
	db      *gorm.DB
	store   *memStore
	recipes *service.RecipeService
}

func newRecipeEnv(t *testing.T) *recipeEnv {
	t.Helper()
	db := testdb.NewSQLite(t)
	store := newMemStore()
	images := service.NewImageService(store, 64)
	return &recipeEnv{db: db, store: store, recipes: service.NewRecipeService(db, images)}
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func uintPtr(u uint) *uint { return &u }

// writeRequest builds a complete, valid write request for the given fixtures.
func writeRequest(t *testing.T, name string, tags []uint, ingredients ...types.IngredientAmount) *types.RecipeWriteRequest {
	t.Helper()
	return &types.RecipeWriteRequest{
		Tags:        tags,
		Ingredients: ingredients,
		Image:       strPtr(pngDataURI(t, 4, 4)),
		Name:        strPtr(name),
		Text:        strPtr("Mix and bake."),
		CookingTime: intPtr(25),
	}
}

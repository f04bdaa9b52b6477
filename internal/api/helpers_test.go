package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testdb"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
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

type testAPI struct {
	router *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
}

func setupTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db := testdb.NewSQLite(t)
	images := service.NewImageService(&memStore{objects: map[string][]byte{}}, 128)
	denylist, err := service.NewMemoryDenylist(64)
	require.NoError(t, err)
	auth := service.NewAuthService(db, "test-secret", time.Hour, denylist)
	tags, err := service.NewTagService(db)
	require.NoError(t, err)

	router := gin.New()
	router.Use(middleware.Recovery(), middleware.RequestLogger())
	RegisterRoutes(router, &Services{
		DB:            db,
		Auth:          auth,
		Users:         service.NewUserService(db).WithHashCost(bcrypt.MinCost),
		Recipes:       service.NewRecipeService(db, images),
		Subscriptions: service.NewSubscriptionService(db, images),
		Tags:          tags,
		Ingredients:   service.NewIngredientService(db),
		ShoppingList:  service.NewShoppingListService(db, config.SiteConfig{ShoppingListFooter: "Bon appetit"}),
		Pages:         Paginator{DefaultLimit: 6, MaxLimit: 100},
	})

	return &testAPI{router: router, db: db, auth: auth}
}

// token issues a token for user.
func (a *testAPI) token(t *testing.T, user models.User) string {
	t.Helper()
	token, err := a.auth.GenerateToken(&user)
	require.NoError(t, err)
	return token
}

// PerformRequestWithToken sends body as JSON; an empty token sends no Authorization header.
func PerformRequestWithToken(router http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func pngDataURI(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 3))))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

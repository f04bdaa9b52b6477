package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/testdb"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestTags(t *testing.T) {
	a := setupTestAPI(t)
	lunch := testdb.CreateTag(t, a.db, "lunch")
	testdb.CreateTag(t, a.db, "dinner")

	w := PerformRequestWithToken(a.router, http.MethodGet, "/api/tags", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]types.TagResponse](t, w), 2)

	w = PerformRequestWithToken(a.router, http.MethodGet, fmt.Sprintf("/api/tags/%d", lunch.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "lunch", decode[types.TagResponse](t, w).Slug)

	w = PerformRequestWithToken(a.router, http.MethodGet, "/api/tags/999", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = PerformRequestWithToken(a.router, http.MethodGet, "/api/tags/abc", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIngredients(t *testing.T) {
	a := setupTestAPI(t)
	testdb.CreateIngredient(t, a.db, "sugar", "g")
	testdb.CreateIngredient(t, a.db, "brown sugar", "g")
	salt := testdb.CreateIngredient(t, a.db, "salt", "g")

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"brown sugar", "salt", "sugar"}},
		{"?name=sug", []string{"sugar", "brown sugar"}},
		{"?name=SAL", []string{"salt"}},
		{"?name=pepper", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := PerformRequestWithToken(a.router, http.MethodGet, "/api/ingredients"+tt.query, nil, "")
			require.Equal(t, http.StatusOK, w.Code)

			names := []string{}
			for _, ing := range decode[[]types.IngredientResponse](t, w) {
				names = append(names, ing.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	w := PerformRequestWithToken(a.router, http.MethodGet, fmt.Sprintf("/api/ingredients/%d", salt.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "salt", decode[types.IngredientResponse](t, w).Name)

	w = PerformRequestWithToken(a.router, http.MethodGet, "/api/ingredients/999", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthCheck(t *testing.T) {
	a := setupTestAPI(t)

	for _, path := range []string{"/health", "/api/health"} {
		w := PerformRequestWithToken(a.router, http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", decode[map[string]string](t, w)["status"])
	}

	sqlDB, err := a.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := PerformRequestWithToken(a.router, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthCheckReportsRedis(t *testing.T) {
	db := testdb.NewSQLite(t)

	down := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = down.Close() })

	router := gin.New()
	router.GET("/health", HealthCheck(db, down))

	w := PerformRequestWithToken(router, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode[map[string]string](t, w)
	assert.Equal(t, "ok", body["database"])
	assert.Equal(t, "unreachable", body["redis"])

	up := testdb.NewRedis(t)
	router = gin.New()
	router.GET("/health", HealthCheck(db, up))

	w = PerformRequestWithToken(router, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, w)["redis"])
}

func TestMetricsEndpoint(t *testing.T) {
	a := setupTestAPI(t)

	w := PerformRequestWithToken(a.router, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

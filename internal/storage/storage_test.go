package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/config"
)

func TestLocalStore(t *testing.T) {
	root := filepath.Join(t.TempDir(), "media")
	store, err := NewLocalStore(root, "/media/")
	require.NoError(t, err)
	ctx := context.Background()

	key := "recipes/images/abc.png"
	require.NoError(t, store.Save(ctx, key, []byte("png-bytes"), "image/png"))

	data, err := os.ReadFile(filepath.Join(root, "recipes", "images", "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "/media/recipes/images/abc.png", store.URL(key))
	assert.Empty(t, store.URL(""))

	require.NoError(t, store.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(root, "recipes", "images", "abc.png"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(ctx, key), "deleting a missing object is not an error")
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/media")
	require.NoError(t, err)

	for _, key := range []string{"../outside.png", "/etc/passwd", ".."} {
		assert.Error(t, store.Save(context.Background(), key, []byte("x"), "image/png"), key)
	}
}

func TestS3StoreURL(t *testing.T) {
	store := NewS3Store(&config.S3Config{BucketName: "foodgram", Region: "eu-west-1"})
	assert.Equal(t, "https://foodgram.s3.eu-west-1.amazonaws.com/recipes/images/a.jpg", store.URL("recipes/images/a.jpg"))

	minio := NewS3Store(&config.S3Config{BucketName: "foodgram", Endpoint: "http://localhost:9000/"})
	assert.Equal(t, "http://localhost:9000/foodgram/recipes/images/a.jpg", minio.URL("recipes/images/a.jpg"))
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := &config.Config{MediaStorage: "local", MediaDir: t.TempDir(), MediaURL: "/media"}
	store, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)

	cfg.MediaStorage = "ftp"
	_, err = New(context.Background(), cfg)
	assert.Error(t, err)
}

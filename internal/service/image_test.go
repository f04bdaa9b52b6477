package service_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/service"
)

type mockImageStore struct {
	mock.Mock
}

func (m *mockImageStore) Save(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *mockImageStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockImageStore) URL(key string) string {
	return "/media/" + key
}

func TestImageDecode(t *testing.T) {
	images := service.NewImageService(newMemStore(), 64)

	t.Run("data uri png", func(t *testing.T) {
		img, err := images.Decode(pngDataURI(t, 8, 8))
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.ContentType)
		assert.Equal(t, "png", img.Ext)
	})

	t.Run("bare base64", func(t *testing.T) {
		uri := pngDataURI(t, 8, 8)
		_, err := images.Decode(uri[strings.IndexByte(uri, ',')+1:])
		require.NoError(t, err)
	})

	t.Run("wide image is downscaled", func(t *testing.T) {
		img, err := images.Decode(pngDataURI(t, 200, 100))
		require.NoError(t, err)

		decoded, _, err := image.Decode(bytes.NewReader(img.Data))
		require.NoError(t, err)
		assert.Equal(t, 64, decoded.Bounds().Dx())
		assert.Equal(t, 32, decoded.Bounds().Dy())
	})

	t.Run("jpeg stays jpeg", func(t *testing.T) {
		src := image.NewRGBA(image.Rect(0, 0, 4, 4))
		src.Set(1, 1, color.White)
		var buf bytes.Buffer
		require.NoError(t, jpeg.Encode(&buf, src, nil))

		img, err := images.Decode("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", img.ContentType)
		assert.Equal(t, "jpg", img.Ext)
	})

	for name, payload := range map[string]string{
		"empty":        "",
		"not base64":   "data:image/png;base64,@@@",
		"not an image": base64.StdEncoding.EncodeToString([]byte("hello")),
		"no base64":    "data:image/png,rawbytes",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := images.Decode(payload)
			assert.Error(t, err)
		})
	}
}

// oversizedPNG returns a tiny PNG whose header claims width x height pixels.
func oversizedPNG(t *testing.T, width, height uint32) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))))

	raw := buf.Bytes()
	// IHDR data starts after the signature, chunk length and chunk type
	binary.BigEndian.PutUint32(raw[16:20], width)
	binary.BigEndian.PutUint32(raw[20:24], height)
	binary.BigEndian.PutUint32(raw[29:33], crc32.ChecksumIEEE(raw[12:29]))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)
}

func TestImageDecodeRejectsHugeDimensions(t *testing.T) {
	images := service.NewImageService(newMemStore(), 64)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(mustBase64(t, oversizedPNG(t, 40000, 40000))))
	require.NoError(t, err)
	require.Equal(t, 40000, cfg.Width)

	_, err = images.Decode(oversizedPNG(t, 40000, 40000))
	assert.EqualError(t, err, "upload a valid image")

	_, err = images.Decode(oversizedPNG(t, 1_000_000, 50))
	assert.EqualError(t, err, "upload a valid image")
}

func mustBase64(t *testing.T, uri string) []byte {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(uri[strings.IndexByte(uri, ',')+1:])
	require.NoError(t, err)
	return raw
}

func TestImageStoreAndDiscard(t *testing.T) {
	store := new(mockImageStore)
	images := service.NewImageService(store, 64)
	ctx := context.Background()

	img, err := images.Decode(pngDataURI(t, 2, 2))
	require.NoError(t, err)

	store.On("Save", ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "recipes/images/") && strings.HasSuffix(key, ".png")
	}), img.Data, "image/png").Return(nil).Once()

	key, err := images.Store(ctx, img)
	require.NoError(t, err)
	assert.Equal(t, "/media/"+key, images.URL(key))

	store.On("Delete", ctx, key).Return(errors.New("gone")).Once()
	images.Discard(ctx, key)
	images.Discard(ctx, "")

	store.AssertExpectations(t)
}

func TestImageStoreFailure(t *testing.T) {
	store := new(mockImageStore)
	images := service.NewImageService(store, 64)
	store.On("Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))

	img, err := images.Decode(pngDataURI(t, 2, 2))
	require.NoError(t, err)
	_, err = images.Store(context.Background(), img)
	assert.ErrorContains(t, err, "disk full")
}

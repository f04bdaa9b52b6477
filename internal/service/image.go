package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // decoded, stored as png
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/google/uuid"
	"github.com/nfnt/resize"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
)

var errInvalidImage = errors.New("upload a valid image")

// maxImagePixels bounds what the decoder will allocate for one upload.
const maxImagePixels = 40_000_000

// ImageStore persists encoded recipe images.
type ImageStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// ProcessedImage is a decoded, resized and re-encoded upload.
type ProcessedImage struct {
	Data        []byte
	ContentType string
	Ext         string
}

// ImageService turns base64 payloads into stored images.
type ImageService struct {
	store    ImageStore
	maxWidth uint
}

func NewImageService(store ImageStore, maxWidth int) *ImageService {
	if maxWidth <= 0 {
		maxWidth = 1024
	}
	return &ImageService{store: store, maxWidth: uint(maxWidth)}
}

// Decode accepts "data:image/<fmt>;base64,<payload>" or a bare base64 payload.
func (s *ImageService) Decode(payload string) (*ProcessedImage, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, errInvalidImage
	}
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 || !strings.HasSuffix(payload[:comma], ";base64") {
			return nil, errInvalidImage
		}
		payload = payload[comma+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errInvalidImage
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errInvalidImage
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, errInvalidImage
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errInvalidImage
	}

	if uint(img.Bounds().Dx()) > s.maxWidth {
		img = resize.Resize(s.maxWidth, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	out := &ProcessedImage{}
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85})
		out.ContentType, out.Ext = "image/jpeg", "jpg"
	default:
		err = png.Encode(&buf, img)
		out.ContentType, out.Ext = "image/png", "png"
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	out.Data = buf.Bytes()
	return out, nil
}

// Store saves img under a fresh key and returns the key.
func (s *ImageService) Store(ctx context.Context, img *ProcessedImage) (string, error) {
	key := fmt.Sprintf("recipes/images/%s.%s", uuid.NewString(), img.Ext)
	if err := s.store.Save(ctx, key, img.Data, img.ContentType); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	metrics.ImageUploadBytes.Observe(float64(len(img.Data)))
	return key, nil
}

// Discard removes a stored image; failures are only logged.
func (s *ImageService) Discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to delete image")
	}
}

func (s *ImageService) URL(key string) string {
	return s.store.URL(key)
}

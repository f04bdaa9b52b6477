package storage

import (
	"context"
	"fmt"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/service"
)

var (
	_ service.ImageStore = (*LocalStore)(nil)
	_ service.ImageStore = (*S3Store)(nil)
)

// New builds the image store selected by MEDIA_STORAGE.
func New(ctx context.Context, cfg *config.Config) (service.ImageStore, error) {
	switch cfg.MediaStorage {
	case "local":
		return NewLocalStore(cfg.MediaDir, cfg.MediaURL)
	case "s3":
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewS3Store(s3cfg), nil
	default:
		return nil, fmt.Errorf("unknown media storage %q", cfg.MediaStorage)
	}
}

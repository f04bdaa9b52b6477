package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pageza/foodgram/backend/config"
)

// S3Store keeps images in an S3 bucket (or any S3-compatible endpoint).
type S3Store struct {
	cfg *config.S3Config
}

func NewS3Store(cfg *config.S3Config) *S3Store {
	return &S3Store{cfg: cfg}
}

func (s *S3Store) Save(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.cfg.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.cfg.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

func (s *S3Store) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.cfg.ObjectURL(key)
}

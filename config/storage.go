package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3 client and bucket info
type S3Config struct {
	Client     *s3.Client
	BucketName string
	Region     string
	Endpoint   string
}

// NewS3Config initializes the S3 client for recipe images.
// A custom endpoint (MinIO, localstack) switches the client to path-style addressing.
func NewS3Config(ctx context.Context, cfg *Config) (*S3Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Config{
		Client:     client,
		BucketName: cfg.S3Bucket,
		Region:     cfg.S3Region,
		Endpoint:   cfg.S3Endpoint,
	}, nil
}

// ObjectURL returns the public URL of an object key
func (s *S3Config) ObjectURL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	if s.Endpoint != "" {
		return strings.TrimRight(s.Endpoint, "/") + "/" + s.BucketName + "/" + escaped
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.BucketName, s.Region, escaped)
}

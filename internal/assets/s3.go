package assets

import (
	"context"
	"fmt"
	"time"

	"ecommerce-api/internal/config"

	"github.com/gofiber/storage/s3/v2"
)

// S3Store keeps assets in an S3 (or S3-compatible, e.g. MinIO) bucket
type S3Store struct {
	bucket   *s3.Storage
	endpoint string
	name     string
	region   string
}

// NewS3Store creates an S3Store from the assets configuration
func NewS3Store(cfg config.AssetsConfig) *S3Store {
	bucket := s3.New(s3.Config{
		Endpoint: cfg.S3Endpoint,
		Bucket:   cfg.S3Bucket,
		Region:   cfg.S3Region,
		Credentials: s3.Credentials{
			AccessKey:       cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
		},
		MaxAttempts:    3,
		RequestTimeout: 10 * time.Second,
	})

	return &S3Store{
		bucket:   bucket,
		endpoint: cfg.S3Endpoint,
		name:     cfg.S3Bucket,
		region:   cfg.S3Region,
	}
}

// Save uploads data under key and returns the public object URL
func (s *S3Store) Save(_ context.Context, key string, data []byte) (*Object, error) {
	if err := s.bucket.Set(key, data, 0); err != nil {
		return nil, fmt.Errorf("failed to upload asset %s: %w", key, err)
	}
	return &Object{URL: s.objectURL(key)}, nil
}

// Delete removes the object under key
func (s *S3Store) Delete(_ context.Context, key string) error {
	if err := s.bucket.Delete(key); err != nil {
		return fmt.Errorf("failed to delete asset %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) objectURL(key string) string {
	// Custom endpoints (MinIO) use path-style URLs
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.name, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.name, s.region, key)
}

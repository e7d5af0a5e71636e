package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/config"
)

var (
	ErrNotFound    = errors.New("file not found")
	ErrInvalidPath = errors.New("invalid file path")
)

// FileStorage stores avatars and face photos under slash-separated keys.
type FileStorage interface {
	// Upload writes the object and returns its key.
	Upload(ctx context.Context, file io.Reader, key string, contentType string) (string, error)

	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete is idempotent: a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// GetURL returns a public URL or, for private buckets, a presigned one valid for expiry.
	GetURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	Exists(ctx context.Context, key string) (bool, error)
}

// New builds the driver selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg config.StorageConfig) (FileStorage, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStorage(cfg.LocalPath, cfg.BaseURL)
	case "s3":
		return NewS3Storage(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Public)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

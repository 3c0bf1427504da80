package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/krushndayshmookh/krushn-calendar/config"
)

// Storage holds export snapshots under slash-separated keys.
type Storage interface {
	Put(ctx context.Context, key string, body io.Reader) error
	Exists(ctx context.Context, key string) (bool, error)
}

// New picks the backend named by STORAGE_TYPE.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.StorageType {
	case "", "local":
		return NewLocalStorage(cfg.ExportDir), nil
	case "s3":
		return NewS3Storage(ctx, S3Config{Bucket: cfg.ExportBucket})
	case "r2":
		return NewR2Storage(ctx, R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			Bucket:          cfg.ExportBucket,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.StorageType)
	}
}

package storage

import (
	"context"
	"fmt"
)

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

func (c R2Config) Validate() error {
	if c.AccountID == "" {
		return fmt.Errorf("account ID is required")
	}
	if c.AccessKeyID == "" {
		return fmt.Errorf("access key ID is required")
	}
	if c.SecretAccessKey == "" {
		return fmt.Errorf("secret access key is required")
	}
	if c.Bucket == "" {
		return fmt.Errorf("bucket name is required")
	}
	return nil
}

// Endpoint is the account's S3-compatible API URL.
func (c R2Config) Endpoint() string {
	return "https://" + c.AccountID + ".r2.cloudflarestorage.com"
}

// NewR2Storage talks to Cloudflare R2 through its S3 API.
func NewR2Storage(ctx context.Context, cfg R2Config) (*S3Storage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid R2 configuration: %w", err)
	}
	return NewS3Storage(ctx, S3Config{
		Bucket:          cfg.Bucket,
		Region:          "auto",
		Endpoint:        cfg.Endpoint(),
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
	})
}

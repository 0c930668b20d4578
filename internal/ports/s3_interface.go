package ports

import (
	"context"
	"time"
)

// S3Storage : архив артефактов
type S3Storage interface {
	UploadObject(ctx context.Context, key string, body []byte, contentType string) error
	GeneratePresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

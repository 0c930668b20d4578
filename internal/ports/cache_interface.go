package ports

import (
	"context"
	"quote-web-server/internal/model"
)

// CacheRepository : Redis кэш снапшотов смет
type CacheRepository interface {
	SetQuote(ctx context.Context, quote *model.Quote) error
	GetQuote(ctx context.Context, uuid string) (*model.Quote, error)
	DeleteQuote(ctx context.Context, uuid string) error
}

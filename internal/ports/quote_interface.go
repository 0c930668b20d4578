package ports

import (
	"context"
	"quote-web-server/internal/model"
	"time"

	"github.com/jmoiron/sqlx"
)

// QuoteRepository : SQL слой смет
type QuoteRepository interface {
	GetByUUID(ctx context.Context, exec sqlx.ExtContext, quoteUUID string, ownerUUID string) (*model.Quote, error)
	GetByUUIDAny(ctx context.Context, exec sqlx.ExtContext, quoteUUID string) (*model.Quote, error)
	UpdateArtifact(ctx context.Context, exec sqlx.ExtContext, quoteUUID, pdfURL, pdfDocumentID, storagePath string, generatedAt time.Time) error
	MarkSent(ctx context.Context, exec sqlx.ExtContext, quoteUUID string) error
	ApplyAcceptance(ctx context.Context, exec sqlx.ExtContext, quoteUUID string, upd model.AcceptanceUpdate) (bool, error)
	InsertEvent(ctx context.Context, exec sqlx.ExtContext, event *model.QuoteEvent) error
	BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error)
}

// QuoteDeliveryService : оркестратор доставки, используется хендлерами
type QuoteDeliveryService interface {
	EnsureArtifact(ctx context.Context, quoteUUID string, sender model.SenderContext) (*model.ArtifactResult, error)
	SendQuote(ctx context.Context, quoteUUID string, channel model.Channel, recipient model.Recipient, sender model.SenderContext) (*model.ChannelPayload, error)
	ArchiveLink(ctx context.Context, quoteUUID string, ownerUUID string) (string, error)
}

// QuoteActionService : обработка публичных действий по токену
type QuoteActionService interface {
	Respond(ctx context.Context, token string, action string, meta model.RequestMeta) (*model.ActionResult, error)
	ViewQuote(ctx context.Context, token string) (*model.Quote, *model.QuoteAccessToken, error)
}

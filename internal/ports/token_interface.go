package ports

import (
	"context"
	"quote-web-server/internal/model"

	"github.com/jmoiron/sqlx"
)

// AccessTokenRepository : SQL слой публичных токенов (строки quote_views)
type AccessTokenRepository interface {
	// FindActiveByQuote возвращает nil, nil если активного токена нет
	FindActiveByQuote(ctx context.Context, exec sqlx.ExtContext, quoteUUID string) (*model.QuoteAccessToken, error)
	// FindByToken возвращает nil, nil если токен не найден
	FindByToken(ctx context.Context, exec sqlx.ExtContext, token string) (*model.QuoteAccessToken, error)
	Create(ctx context.Context, exec sqlx.ExtContext, token *model.QuoteAccessToken) error
	// Deactivate гасит токен; повторное гашение не является ошибкой
	Deactivate(ctx context.Context, exec sqlx.ExtContext, token string) error
	// RegisterView инкрементирует view_count и обновляет last_viewed_at
	RegisterView(ctx context.Context, exec sqlx.ExtContext, token string) error
}

// TokenIssuer : выдача одноразовых публичных токенов
type TokenIssuer interface {
	// GetOrCreateToken возвращает nil без ошибки, если токен недоступен —
	// сообщение в этом случае деградирует до варианта без ссылки принятия
	GetOrCreateToken(ctx context.Context, quoteUUID string) *model.QuoteAccessToken
}

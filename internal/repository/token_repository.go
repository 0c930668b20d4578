package repository

import (
	"context"
	"database/sql"
	"errors"
	"quote-web-server/config"
	"quote-web-server/internal/model"
	"quote-web-server/internal/util"

	"github.com/jmoiron/sqlx"
)

type TokenRepository struct {
	*config.Database
}

func NewTokenRepository(database *config.Database) *TokenRepository {
	return &TokenRepository{database}
}

// FindActiveByQuote : ищет действующий токен сметы.
// Инвариант "не более одного активного токена на смету" поддерживается тем,
// что выдача всегда сначала вызывает этот метод и переиспользует найденное.
func (r *TokenRepository) FindActiveByQuote(ctx context.Context, exec sqlx.ExtContext, quoteUUID string) (*model.QuoteAccessToken, error) {
	query := `
		SELECT token, quote_uuid, is_active, expires_at, view_count, last_viewed_at, created_at
		FROM quote_views
		WHERE quote_uuid = $1 AND is_active = TRUE AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT 1
	`

	var token model.QuoteAccessToken
	err := sqlx.GetContext(ctx, exec, &token, query, quoteUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, util.LogError("[TokenRepo] ошибка поиска активного токена", err)
	}

	return &token, nil
}

// FindByToken : ищет токен по значению; nil, nil если не найден
func (r *TokenRepository) FindByToken(ctx context.Context, exec sqlx.ExtContext, tokenValue string) (*model.QuoteAccessToken, error) {
	query := `
		SELECT token, quote_uuid, is_active, expires_at, view_count, last_viewed_at, created_at
		FROM quote_views
		WHERE token = $1
	`

	var token model.QuoteAccessToken
	err := sqlx.GetContext(ctx, exec, &token, query, tokenValue)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, util.LogError("[TokenRepo] ошибка поиска токена", err)
	}

	return &token, nil
}

// Create : сохраняет новый токен
func (r *TokenRepository) Create(ctx context.Context, exec sqlx.ExtContext, token *model.QuoteAccessToken) error {
	query := `
		INSERT INTO quote_views (token, quote_uuid, is_active, expires_at, view_count, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`

	_, err := exec.ExecContext(ctx, query,
		token.Token,
		token.QuoteUUID,
		token.IsActive,
		token.ExpiresAt,
		token.ViewCount,
	)
	if err != nil {
		return util.LogError("[TokenRepo] не удалось сохранить токен", err)
	}
	return nil
}

// Deactivate : гасит токен после завершенного ответа клиента.
// Условие is_active = TRUE делает повторное гашение no-op без ошибки.
func (r *TokenRepository) Deactivate(ctx context.Context, exec sqlx.ExtContext, tokenValue string) error {
	query := `UPDATE quote_views SET is_active = FALSE WHERE token = $1 AND is_active = TRUE`

	_, err := exec.ExecContext(ctx, query, tokenValue)
	if err != nil {
		return util.LogError("[TokenRepo] не удалось погасить токен", err)
	}
	return nil
}

// RegisterView : учитывает просмотр публичной страницы
func (r *TokenRepository) RegisterView(ctx context.Context, exec sqlx.ExtContext, tokenValue string) error {
	query := `
		UPDATE quote_views
		SET view_count = view_count + 1, last_viewed_at = NOW()
		WHERE token = $1
	`

	_, err := exec.ExecContext(ctx, query, tokenValue)
	if err != nil {
		return util.LogError("[TokenRepo] не удалось учесть просмотр", err)
	}
	return nil
}

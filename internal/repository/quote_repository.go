package repository

import (
	"context"
	"database/sql"
	"errors"
	"quote-web-server/config"
	"quote-web-server/internal/model"
	"quote-web-server/internal/util"
	"time"

	"github.com/jmoiron/sqlx"
)

const quoteColumns = `
	uuid, owner_uuid, quote_number, client_data, items, subtotal, vat_amount, total,
	expiry_date, notes, status, acceptance_status, accepted_at, accepted_by_name,
	accepted_by_email, accepted_ip, accepted_user_agent, acceptance_method,
	pdf_url, pdf_document_id, pdf_generated_at, pdf_version, pdf_storage_path,
	created_at, updated_at, deleted_at`

type QuoteRepository struct {
	*config.Database
}

func NewQuoteRepository(database *config.Database) *QuoteRepository {
	return &QuoteRepository{database}
}

// GetByUUID : возвращает смету владельца
func (r *QuoteRepository) GetByUUID(ctx context.Context, exec sqlx.ExtContext, quoteUUID string, ownerUUID string) (*model.Quote, error) {
	query := `SELECT ` + quoteColumns + `
		FROM quotes
		WHERE uuid = $1 AND owner_uuid = $2 AND deleted_at IS NULL`

	var quote model.Quote
	err := sqlx.GetContext(ctx, exec, &quote, query, quoteUUID, ownerUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.LogError("[QuoteRepo] смета не найдена", err)
		}
		return nil, util.LogError("[QuoteRepo] ошибка получения сметы", err)
	}

	return &quote, nil
}

// GetByUUIDAny : возвращает смету без проверки владельца (публичный путь по токену)
func (r *QuoteRepository) GetByUUIDAny(ctx context.Context, exec sqlx.ExtContext, quoteUUID string) (*model.Quote, error) {
	query := `SELECT ` + quoteColumns + `
		FROM quotes
		WHERE uuid = $1 AND deleted_at IS NULL`

	var quote model.Quote
	err := sqlx.GetContext(ctx, exec, &quote, query, quoteUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, util.LogError("[QuoteRepo] ошибка получения сметы", err)
	}

	return &quote, nil
}

// UpdateArtifact : фиксирует новый артефакт и инкрементирует pdf_version.
// Вызывается только при успешном получении ссылки от рендерера.
func (r *QuoteRepository) UpdateArtifact(ctx context.Context, exec sqlx.ExtContext, quoteUUID, pdfURL, pdfDocumentID, storagePath string, generatedAt time.Time) error {
	query := `
		UPDATE quotes
		SET pdf_url = $2,
		    pdf_document_id = $3,
		    pdf_storage_path = $4,
		    pdf_generated_at = $5,
		    pdf_version = pdf_version + 1
		WHERE uuid = $1 AND deleted_at IS NULL
	`

	result, err := exec.ExecContext(ctx, query, quoteUUID, pdfURL, pdfDocumentID, storagePath, generatedAt)
	if err != nil {
		return util.LogError("[QuoteRepo] не удалось сохранить артефакт", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[QuoteRepo] не удалось проверить обновление артефакта", err)
	}
	if rowsAffected == 0 {
		return util.LogError("[QuoteRepo] смета для обновления артефакта не найдена", sql.ErrNoRows)
	}

	return nil
}

// MarkSent : переводит смету в статус sent; выполняется для всех каналов доставки
func (r *QuoteRepository) MarkSent(ctx context.Context, exec sqlx.ExtContext, quoteUUID string) error {
	query := `UPDATE quotes SET status = $2 WHERE uuid = $1 AND deleted_at IS NULL`

	_, err := exec.ExecContext(ctx, query, quoteUUID, model.QuoteStatusSent)
	if err != nil {
		return util.LogError("[QuoteRepo] не удалось отметить смету отправленной", err)
	}
	return nil
}

// ApplyAcceptance : условный одноразовый переход acceptance_status.
// Условие acceptance_status IS NULL делает запись атомарным арбитром гонки
// двух одновременных кликов: побеждает тот запрос, чей UPDATE затронул строку.
func (r *QuoteRepository) ApplyAcceptance(ctx context.Context, exec sqlx.ExtContext, quoteUUID string, upd model.AcceptanceUpdate) (bool, error) {
	query := `
		UPDATE quotes
		SET status = $2,
		    acceptance_status = $3,
		    accepted_at = NOW(),
		    accepted_by_name = $4,
		    accepted_by_email = $5,
		    accepted_ip = $6,
		    accepted_user_agent = $7,
		    acceptance_method = $8
		WHERE uuid = $1 AND acceptance_status IS NULL AND deleted_at IS NULL
	`

	result, err := exec.ExecContext(ctx, query,
		quoteUUID,
		upd.Status,
		upd.AcceptanceStatus,
		upd.ByName,
		upd.ByEmail,
		upd.IP,
		upd.UserAgent,
		upd.Method,
	)
	if err != nil {
		return false, util.LogError("[QuoteRepo] не удалось применить переход acceptance_status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, util.LogError("[QuoteRepo] не удалось проверить переход acceptance_status", err)
	}

	return rowsAffected > 0, nil
}

// InsertEvent : пишет событие аудита (попытка доставки, ответ клиента)
func (r *QuoteRepository) InsertEvent(ctx context.Context, exec sqlx.ExtContext, event *model.QuoteEvent) error {
	query := `
		INSERT INTO quote_events (uuid, quote_uuid, kind, channel, artifact_url, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`

	_, err := exec.ExecContext(ctx, query,
		event.UUID,
		event.QuoteUUID,
		event.Kind,
		event.Channel,
		event.ArtifactURL,
		event.Detail,
	)
	if err != nil {
		return util.LogError("[QuoteRepo] не удалось сохранить событие", err)
	}
	return nil
}

func (r *QuoteRepository) BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return tx, func() error { return tx.Rollback() }, func() error { return tx.Commit() }, nil
}

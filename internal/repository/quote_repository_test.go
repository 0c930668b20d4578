package repository_test

import (
	"context"
	"database/sql"
	"quote-web-server/config"
	"quote-web-server/internal/model"
	"quote-web-server/internal/repository"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "sqlmock"), mock
}

func acceptanceUpdate() model.AcceptanceUpdate {
	return model.AcceptanceUpdate{
		Status:           model.QuoteStatusApproved,
		AcceptanceStatus: model.AcceptanceAccepted,
		ByName:           "Иван Петров",
		ByEmail:          "ivan@example.com",
		IP:               "203.0.113.7",
		UserAgent:        "Mozilla/5.0",
		Method:           "public_link",
	}
}

// Победитель гонки: условный UPDATE затронул строку
func TestApplyAcceptance_Winner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewQuoteRepository(&config.Database{DB: db})
	upd := acceptanceUpdate()

	mock.ExpectExec(`UPDATE quotes`).
		WithArgs("quote1", upd.Status, upd.AcceptanceStatus, upd.ByName, upd.ByEmail, upd.IP, upd.UserAgent, upd.Method).
		WillReturnResult(sqlmock.NewResult(0, 1))

	applied, err := repo.ApplyAcceptance(context.Background(), db, "quote1", upd)

	require.NoError(t, err)
	assert.True(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Проигравший: acceptance_status уже не NULL, строка не затронута
func TestApplyAcceptance_Loser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewQuoteRepository(&config.Database{DB: db})

	mock.ExpectExec(`UPDATE quotes`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := repo.ApplyAcceptance(context.Background(), db, "quote1", acceptanceUpdate())

	require.NoError(t, err)
	assert.False(t, applied)
}

func TestUpdateArtifact_IncrementsVersion(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewQuoteRepository(&config.Database{DB: db})
	generatedAt := time.Now()

	mock.ExpectExec(`UPDATE quotes`).
		WithArgs("quote1", "https://renderer.example/a.pdf", "doc-1", "quotes/quote1/v1.pdf", generatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateArtifact(context.Background(), db, "quote1", "https://renderer.example/a.pdf", "doc-1", "quotes/quote1/v1.pdf", generatedAt)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateArtifact_QuoteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewQuoteRepository(&config.Database{DB: db})

	mock.ExpectExec(`UPDATE quotes`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateArtifact(context.Background(), db, "missing", "u", "d", "", time.Now())

	require.Error(t, err)
}

func TestGetByUUIDAny_NotFoundReturnsNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewQuoteRepository(&config.Database{DB: db})

	mock.ExpectQuery(`SELECT`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	quote, err := repo.GetByUUIDAny(context.Background(), db, "missing")

	require.NoError(t, err)
	assert.Nil(t, quote)
}

func TestMarkSent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewQuoteRepository(&config.Database{DB: db})

	mock.ExpectExec(`UPDATE quotes SET status`).
		WithArgs("quote1", model.QuoteStatusSent).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkSent(context.Background(), db, "quote1")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertEvent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewQuoteRepository(&config.Database{DB: db})

	event := &model.QuoteEvent{
		UUID:      "event1",
		QuoteUUID: "quote1",
		Kind:      model.EventQuoteSent,
		Channel:   "email",
	}

	mock.ExpectExec(`INSERT INTO quote_events`).
		WithArgs(event.UUID, event.QuoteUUID, event.Kind, event.Channel, event.ArtifactURL, event.Detail).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.InsertEvent(context.Background(), db, event)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

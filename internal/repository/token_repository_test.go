package repository_test

import (
	"context"
	"quote-web-server/config"
	"quote-web-server/internal/model"
	"quote-web-server/internal/repository"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindActiveByQuote_Found(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewTokenRepository(&config.Database{DB: db})

	expiresAt := time.Now().Add(24 * time.Hour)
	createdAt := time.Now()

	rows := sqlmock.NewRows([]string{"token", "quote_uuid", "is_active", "expires_at", "view_count", "last_viewed_at", "created_at"}).
		AddRow("6f1e0b6e-1f0a-4f1e-9a4b-1c2d3e4f5a6b", "quote1", true, expiresAt, 2, nil, createdAt)

	mock.ExpectQuery(`SELECT (.+) FROM quote_views`).
		WithArgs("quote1").
		WillReturnRows(rows)

	token, err := repo.FindActiveByQuote(context.Background(), db, "quote1")

	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "6f1e0b6e-1f0a-4f1e-9a4b-1c2d3e4f5a6b", token.Token)
	assert.True(t, token.IsActive)
	assert.Equal(t, 2, token.ViewCount)
}

func TestFindActiveByQuote_NoneReturnsNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewTokenRepository(&config.Database{DB: db})

	rows := sqlmock.NewRows([]string{"token", "quote_uuid", "is_active", "expires_at", "view_count", "last_viewed_at", "created_at"})

	mock.ExpectQuery(`SELECT (.+) FROM quote_views`).
		WithArgs("quote1").
		WillReturnRows(rows)

	token, err := repo.FindActiveByQuote(context.Background(), db, "quote1")

	require.NoError(t, err)
	assert.Nil(t, token)
}

func TestCreateToken(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewTokenRepository(&config.Database{DB: db})

	token := &model.QuoteAccessToken{
		Token:     "6f1e0b6e-1f0a-4f1e-9a4b-1c2d3e4f5a6b",
		QuoteUUID: "quote1",
		IsActive:  true,
		ExpiresAt: time.Now().Add(30 * 24 * time.Hour),
	}

	mock.ExpectExec(`INSERT INTO quote_views`).
		WithArgs(token.Token, token.QuoteUUID, token.IsActive, token.ExpiresAt, token.ViewCount).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), db, token)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Повторное гашение уже погашенного токена не является ошибкой
func TestDeactivate_Idempotent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewTokenRepository(&config.Database{DB: db})

	mock.ExpectExec(`UPDATE quote_views SET is_active`).
		WithArgs("6f1e0b6e-1f0a-4f1e-9a4b-1c2d3e4f5a6b").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Deactivate(context.Background(), db, "6f1e0b6e-1f0a-4f1e-9a4b-1c2d3e4f5a6b")

	require.NoError(t, err)
}

func TestRegisterView(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewTokenRepository(&config.Database{DB: db})

	mock.ExpectExec(`UPDATE quote_views`).
		WithArgs("6f1e0b6e-1f0a-4f1e-9a4b-1c2d3e4f5a6b").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.RegisterView(context.Background(), db, "6f1e0b6e-1f0a-4f1e-9a4b-1c2d3e4f5a6b")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package service_test

import (
	"context"
	"errors"
	"quote-web-server/config"
	"quote-web-server/internal/model"
	"quote-web-server/internal/service"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const validToken = "6f1e0b6e-1f0a-4f1e-9a4b-1c2d3e4f5a6b"

type actionMocks struct {
	quoteRepo *MockQuoteRepository
	tokenRepo *MockTokenRepository
	userRepo  *MockUserRepository
	mailer    *MockMailer
	cache     *MockCacheRepository
}

func newTestActionService() (*service.ActionService, *actionMocks) {
	m := &actionMocks{
		quoteRepo: new(MockQuoteRepository),
		tokenRepo: new(MockTokenRepository),
		userRepo:  new(MockUserRepository),
		mailer:    new(MockMailer),
		cache:     new(MockCacheRepository),
	}

	svc := service.NewActionService(
		m.quoteRepo,
		m.tokenRepo,
		m.userRepo,
		m.mailer,
		m.cache,
		&config.Database{},
	)

	return svc, m
}

func activeToken() *model.QuoteAccessToken {
	return &model.QuoteAccessToken{
		Token:     validToken,
		QuoteUUID: "quote1",
		IsActive:  true,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
}

func expectTX(m *actionMocks) {
	m.quoteRepo.On("BeginTX", mock.Anything).
		Return(sqlx.ExtContext(&fakeTx{}), func() error { return nil }, func() error { return nil }, nil)
}

func testMeta() model.RequestMeta {
	return model.RequestMeta{IP: "203.0.113.7", UserAgent: "Mozilla/5.0"}
}

// ===== Валидация входа =====

func TestRespond_UnknownAction(t *testing.T) {
	svc, m := newTestActionService()

	result, err := svc.Respond(context.Background(), validToken, "maybe", testMeta())

	require.NoError(t, err)
	assert.Equal(t, model.OutcomeInvalidLink, result.Outcome)
	m.tokenRepo.AssertNotCalled(t, "FindByToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestRespond_MalformedToken(t *testing.T) {
	svc, m := newTestActionService()

	result, err := svc.Respond(context.Background(), "not-a-uuid", service.ActionAccept, testMeta())

	require.NoError(t, err)
	assert.Equal(t, model.OutcomeInvalidLink, result.Outcome)
	m.tokenRepo.AssertNotCalled(t, "FindByToken", mock.Anything, mock.Anything, mock.Anything)
}

// ===== Состояния токена =====

func TestRespond_TokenNotFound(t *testing.T) {
	svc, m := newTestActionService()
	ctx := context.Background()

	m.tokenRepo.On("FindByToken", ctx, mock.Anything, validToken).Return(nil, nil)

	result, err := svc.Respond(ctx, validToken, service.ActionAccept, testMeta())

	require.NoError(t, err)
	assert.Equal(t, model.OutcomeTokenNotFound, result.Outcome)
}

func TestRespond_ExpiredToken(t *testing.T) {
	svc, m := newTestActionService()
	ctx := context.Background()

	token := activeToken()
	token.ExpiresAt = time.Now().Add(-time.Hour)
	m.tokenRepo.On("FindByToken", ctx, mock.Anything, validToken).Return(token, nil)

	result, err := svc.Respond(ctx, validToken, service.ActionAccept, testMeta())

	require.NoError(t, err)
	assert.Equal(t, model.OutcomeTokenNotFound, result.Outcome)
}

func TestRespond_UsedToken(t *testing.T) {
	svc, m := newTestActionService()
	ctx := context.Background()

	token := activeToken()
	token.IsActive = false
	m.tokenRepo.On("FindByToken", ctx, mock.Anything, validToken).Return(token, nil)

	result, err := svc.Respond(ctx, validToken, service.ActionReject, testMeta())

	require.NoError(t, err)
	assert.Equal(t, model.OutcomeAlreadyUsed, result.Outcome)
	m.quoteRepo.AssertNotCalled(t, "GetByUUIDAny", mock.Anything, mock.Anything, mock.Anything)
}

func TestRespond_QuoteMissing(t *testing.T) {
	svc, m := newTestActionService()
	ctx := context.Background()

	m.tokenRepo.On("FindByToken", ctx, mock.Anything, validToken).Return(activeToken(), nil)
	m.quoteRepo.On("GetByUUIDAny", ctx, mock.Anything, "quote1").Return(nil, nil)

	result, err := svc.Respond(ctx, validToken, service.ActionAccept, testMeta())

	require.NoError(t, err)
	assert.Equal(t, model.OutcomeQuoteMissing, result.Outcome)
}

func TestRespond_AlreadyRespondedPreCheck(t *testing.T) {
	svc, m := newTestActionService()
	ctx := context.Background()

	quote := testQuote()
	acceptance := model.AcceptanceAccepted
	quote.AcceptanceStatus = &acceptance

	m.tokenRepo.On("FindByToken", ctx, mock.Anything, validToken).Return(activeToken(), nil)
	m.quoteRepo.On("GetByUUIDAny", ctx, mock.Anything, "quote1").Return(quote, nil)

	result, err := svc.Respond(ctx, validToken, service.ActionReject, testMeta())

	require.NoError(t, err)
	assert.Equal(t, model.OutcomeAlreadyResponded, result.Outcome)
	require.NotNil(t, result.Quote)
	assert.Equal(t, model.AcceptanceAccepted, *result.Quote.AcceptanceStatus)
	m.quoteRepo.AssertNotCalled(t, "BeginTX", mock.Anything)
}

// ===== Переход состояния =====

func TestRespond_AcceptSuccess(t *testing.T) {
	svc, m := newTestActionService()
	ctx := context.Background()
	quote := testQuote()
	meta := testMeta()

	m.tokenRepo.On("FindByToken", ctx, mock.Anything, validToken).Return(activeToken(), nil)
	m.quoteRepo.On("GetByUUIDAny", ctx, mock.Anything, "quote1").Return(quote, nil).Once()
	expectTX(m)
	m.quoteRepo.On("ApplyAcceptance", ctx, mock.Anything, "quote1", mock.MatchedBy(func(upd model.AcceptanceUpdate) bool {
		return upd.Status == model.QuoteStatusApproved &&
			upd.AcceptanceStatus == model.AcceptanceAccepted &&
			upd.ByName == "Иван Петров" &&
			upd.IP == meta.IP &&
			upd.Method == "public_link"
	})).Return(true, nil)
	m.tokenRepo.On("Deactivate", ctx, mock.Anything, validToken).Return(nil)
	m.quoteRepo.On("InsertEvent", ctx, mock.Anything, mock.MatchedBy(func(e *model.QuoteEvent) bool {
		return e.Kind == model.EventQuoteAccepted
	})).Return(nil)
	m.cache.On("DeleteQuote", ctx, "quote1").Return(nil)
	m.userRepo.On("FindByUUID", ctx, mock.Anything, "user1").
		Return(&model.User{UUID: "user1", CompanyEmail: "office@electro.example"}, nil)
	m.mailer.On("Send", ctx, mock.Anything).Return(nil).Twice()

	result, err := svc.Respond(ctx, validToken, service.ActionAccept, meta)

	require.NoError(t, err)
	assert.Equal(t, model.OutcomeAccepted, result.Outcome)
	assert.Equal(t, model.QuoteStatusApproved, result.Quote.Status)
	require.NotNil(t, result.Quote.AcceptanceStatus)
	assert.Equal(t, model.AcceptanceAccepted, *result.Quote.AcceptanceStatus)

	m.quoteRepo.AssertExpectations(t)
	m.tokenRepo.AssertExpectations(t)
	m.mailer.AssertExpectations(t)
}

func TestRespond_RejectDeactivatesToken(t *testing.T) {
	svc, m := newTestActionService()
	ctx := context.Background()
	quote := testQuote()

	m.tokenRepo.On("FindByToken", ctx, mock.Anything, validToken).Return(activeToken(), nil)
	m.quoteRepo.On("GetByUUIDAny", ctx, mock.Anything, "quote1").Return(quote, nil).Once()
	expectTX(m)
	m.quoteRepo.On("ApplyAcceptance", ctx, mock.Anything, "quote1", mock.MatchedBy(func(upd model.AcceptanceUpdate) bool {
		return upd.Status == model.QuoteStatusRejected && upd.AcceptanceStatus == model.AcceptanceRejected
	})).Return(true, nil)
	m.tokenRepo.On("Deactivate", ctx, mock.Anything, validToken).Return(nil)
	m.quoteRepo.On("InsertEvent", ctx, mock.Anything, mock.MatchedBy(func(e *model.QuoteEvent) bool {
		return e.Kind == model.EventQuoteRejected
	})).Return(nil)
	m.cache.On("DeleteQuote", ctx, "quote1").Return(nil)
	m.userRepo.On("FindByUUID", ctx, mock.Anything, "user1").
		Return(&model.User{UUID: "user1", CompanyEmail: "office@electro.example"}, nil)
	m.mailer.On("Send", ctx, mock.Anything).Return(nil)

	result, err := svc.Respond(ctx, validToken, service.ActionReject, testMeta())

	require.NoError(t, err)
	assert.Equal(t, model.OutcomeRejected, result.Outcome)
	m.tokenRepo.AssertCalled(t, "Deactivate", ctx, mock.Anything, validToken)
}

func TestRespond_RaceLoserSeesWinnersResult(t *testing.T) {
	svc, m := newTestActionService()
	ctx := context.Background()
	quote := testQuote()

	winner := testQuote()
	acceptance := model.AcceptanceRejected
	winner.Status = model.QuoteStatusRejected
	winner.AcceptanceStatus = &acceptance

	m.tokenRepo.On("FindByToken", ctx, mock.Anything, validToken).Return(activeToken(), nil)
	// проверка до транзакции видит еще не отвеченную смету
	m.quoteRepo.On("GetByUUIDAny", ctx, mock.Anything, "quote1").Return(quote, nil).Once()
	expectTX(m)
	// параллельный клик успел первым: условный UPDATE не затронул строку
	m.quoteRepo.On("ApplyAcceptance", ctx, mock.Anything, "quote1", mock.Anything).Return(false, nil)
	m.tokenRepo.On("Deactivate", ctx, mock.Anything, validToken).Return(nil)
	m.quoteRepo.On("GetByUUIDAny", ctx, mock.Anything, "quote1").Return(winner, nil).Once()

	result, err := svc.Respond(ctx, validToken, service.ActionAccept, testMeta())

	require.NoError(t, err)
	assert.Equal(t, model.OutcomeAlreadyResponded, result.Outcome)
	require.NotNil(t, result.Quote.AcceptanceStatus)
	assert.Equal(t, model.AcceptanceRejected, *result.Quote.AcceptanceStatus)

	// токен погашен и для проигравшего
	m.tokenRepo.AssertCalled(t, "Deactivate", ctx, mock.Anything, validToken)
	m.quoteRepo.AssertNotCalled(t, "InsertEvent", mock.Anything, mock.Anything, mock.Anything)
	m.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestRespond_NotificationFailureIsNotFatal(t *testing.T) {
	svc, m := newTestActionService()
	ctx := context.Background()
	quote := testQuote()

	m.tokenRepo.On("FindByToken", ctx, mock.Anything, validToken).Return(activeToken(), nil)
	m.quoteRepo.On("GetByUUIDAny", ctx, mock.Anything, "quote1").Return(quote, nil).Once()
	expectTX(m)
	m.quoteRepo.On("ApplyAcceptance", ctx, mock.Anything, "quote1", mock.Anything).Return(true, nil)
	m.tokenRepo.On("Deactivate", ctx, mock.Anything, validToken).Return(nil)
	m.quoteRepo.On("InsertEvent", ctx, mock.Anything, mock.Anything).Return(nil)
	m.cache.On("DeleteQuote", ctx, "quote1").Return(nil)
	m.userRepo.On("FindByUUID", ctx, mock.Anything, "user1").
		Return(&model.User{UUID: "user1", CompanyEmail: "office@electro.example"}, nil)
	m.mailer.On("Send", ctx, mock.Anything).Return(errors.New("smtp down"))

	result, err := svc.Respond(ctx, validToken, service.ActionAccept, testMeta())

	require.NoError(t, err)
	assert.Equal(t, model.OutcomeAccepted, result.Outcome)
}

func TestRespond_TransitionErrorRollsBack(t *testing.T) {
	svc, m := newTestActionService()
	ctx := context.Background()
	quote := testQuote()

	m.tokenRepo.On("FindByToken", ctx, mock.Anything, validToken).Return(activeToken(), nil)
	m.quoteRepo.On("GetByUUIDAny", ctx, mock.Anything, "quote1").Return(quote, nil)
	expectTX(m)
	m.quoteRepo.On("ApplyAcceptance", ctx, mock.Anything, "quote1", mock.Anything).
		Return(false, errors.New("db down"))

	_, err := svc.Respond(ctx, validToken, service.ActionAccept, testMeta())

	require.Error(t, err)
	m.tokenRepo.AssertNotCalled(t, "Deactivate", mock.Anything, mock.Anything, mock.Anything)
}

// ===== Просмотр =====

func TestViewQuote_RegistersView(t *testing.T) {
	svc, m := newTestActionService()
	ctx := context.Background()
	quote := testQuote()

	m.tokenRepo.On("FindByToken", ctx, mock.Anything, validToken).Return(activeToken(), nil)
	m.quoteRepo.On("GetByUUIDAny", ctx, mock.Anything, "quote1").Return(quote, nil)
	m.tokenRepo.On("RegisterView", ctx, mock.Anything, validToken).Return(nil)

	got, token, err := svc.ViewQuote(ctx, validToken)

	require.NoError(t, err)
	assert.Equal(t, quote, got)
	assert.Equal(t, validToken, token.Token)
	m.tokenRepo.AssertExpectations(t)
}

func TestViewQuote_MalformedToken(t *testing.T) {
	svc, m := newTestActionService()

	_, _, err := svc.ViewQuote(context.Background(), "../etc/passwd")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrLinkInvalid))
	m.tokenRepo.AssertNotCalled(t, "FindByToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestViewQuote_UsedTokenStillViewable(t *testing.T) {
	svc, m := newTestActionService()
	ctx := context.Background()
	quote := testQuote()

	token := activeToken()
	token.IsActive = false
	m.tokenRepo.On("FindByToken", ctx, mock.Anything, validToken).Return(token, nil)
	m.quoteRepo.On("GetByUUIDAny", ctx, mock.Anything, "quote1").Return(quote, nil)
	m.tokenRepo.On("RegisterView", ctx, mock.Anything, validToken).Return(nil)

	_, _, err := svc.ViewQuote(ctx, validToken)

	require.NoError(t, err)
}

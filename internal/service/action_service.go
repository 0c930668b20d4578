package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"quote-web-server/config"
	"quote-web-server/internal/model"
	"quote-web-server/internal/ports"
	"time"

	"github.com/google/uuid"
)

// Действия, допустимые по публичной ссылке
const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

const acceptanceMethodPublicLink = "public_link"

var (
	ErrLinkInvalid  = errors.New("некорректная ссылка")
	ErrLinkNotFound = errors.New("ссылка не найдена или просрочена")
)

// ActionService : state machine публичного ответа клиента по токену.
// Идемпотентность перехода обеспечивает условный UPDATE в репозитории;
// сервис лишь интерпретирует его исход.
type ActionService struct {
	quoteRepository ports.QuoteRepository
	tokenRepository ports.AccessTokenRepository
	userRepository  ports.UserRepository
	mailer          ports.Mailer
	cache           ports.CacheRepository
	database        *config.Database
}

func NewActionService(
	quoteRepository ports.QuoteRepository,
	tokenRepository ports.AccessTokenRepository,
	userRepository ports.UserRepository,
	mailer ports.Mailer,
	cache ports.CacheRepository,
	database *config.Database,
) *ActionService {
	return &ActionService{
		quoteRepository: quoteRepository,
		tokenRepository: tokenRepository,
		userRepository:  userRepository,
		mailer:          mailer,
		cache:           cache,
		database:        database,
	}
}

// Respond : обрабатывает accept/reject по публичному токену.
// Бизнес-исходы (невалидная ссылка, повторный ответ и т.п.) возвращаются
// как Outcome без ошибки; ошибкой являются только сбои инфраструктуры.
func (s *ActionService) Respond(ctx context.Context, token string, action string, meta model.RequestMeta) (*model.ActionResult, error) {
	if action != ActionAccept && action != ActionReject {
		return &model.ActionResult{Outcome: model.OutcomeInvalidLink}, nil
	}
	if !tokenFormat.MatchString(token) {
		return &model.ActionResult{Outcome: model.OutcomeInvalidLink}, nil
	}

	accessToken, err := s.tokenRepository.FindByToken(ctx, s.database.DB, token)
	if err != nil {
		return nil, err
	}
	if accessToken == nil || time.Now().After(accessToken.ExpiresAt) {
		return &model.ActionResult{Outcome: model.OutcomeTokenNotFound}, nil
	}
	if !accessToken.IsActive {
		return &model.ActionResult{Outcome: model.OutcomeAlreadyUsed}, nil
	}

	quote, err := s.quoteRepository.GetByUUIDAny(ctx, s.database.DB, accessToken.QuoteUUID)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return &model.ActionResult{Outcome: model.OutcomeQuoteMissing}, nil
	}
	if quote.AcceptanceStatus != nil {
		return &model.ActionResult{Outcome: model.OutcomeAlreadyResponded, Quote: quote}, nil
	}

	var status, acceptance, eventKind string
	var outcome model.ActionOutcome
	if action == ActionAccept {
		status, acceptance = model.QuoteStatusApproved, model.AcceptanceAccepted
		eventKind, outcome = model.EventQuoteAccepted, model.OutcomeAccepted
	} else {
		status, acceptance = model.QuoteStatusRejected, model.AcceptanceRejected
		eventKind, outcome = model.EventQuoteRejected, model.OutcomeRejected
	}

	client := quote.Client()

	exec, rollback, commit, err := s.quoteRepository.BeginTX(ctx)
	if err != nil {
		return nil, err
	}

	applied, err := s.quoteRepository.ApplyAcceptance(ctx, exec, quote.UUID, model.AcceptanceUpdate{
		Status:           status,
		AcceptanceStatus: acceptance,
		ByName:           client.Name,
		ByEmail:          client.Email,
		IP:               meta.IP,
		UserAgent:        meta.UserAgent,
		Method:           acceptanceMethodPublicLink,
	})
	if err != nil {
		_ = rollback()
		return nil, err
	}

	// токен гасится независимо от исхода гонки: ссылка одноразовая
	// и для победителя, и для проигравшего параллельного клика
	if err := s.tokenRepository.Deactivate(ctx, exec, token); err != nil {
		_ = rollback()
		return nil, err
	}

	if applied {
		event := &model.QuoteEvent{
			UUID:      uuid.New().String(),
			QuoteUUID: quote.UUID,
			Kind:      eventKind,
			Detail:    fmt.Sprintf("ip=%s", meta.IP),
		}
		if err := s.quoteRepository.InsertEvent(ctx, exec, event); err != nil {
			_ = rollback()
			return nil, err
		}
	}

	if err := commit(); err != nil {
		return nil, err
	}

	if !applied {
		// гонку выиграл параллельный запрос; показываем его результат
		current, err := s.quoteRepository.GetByUUIDAny(ctx, s.database.DB, quote.UUID)
		if err != nil || current == nil {
			current = quote
		}
		return &model.ActionResult{Outcome: model.OutcomeAlreadyResponded, Quote: current}, nil
	}

	if err := s.cache.DeleteQuote(ctx, quote.UUID); err != nil {
		log.Printf("[ActionService] не удалось инвалидировать кэш сметы %s: %v", quote.UUID, err)
	}

	now := time.Now()
	quote.Status = status
	quote.AcceptanceStatus = &acceptance
	quote.AcceptedAt = &now

	// уведомления best-effort: переход уже зафиксирован
	s.notifyParties(ctx, quote, client, outcome)

	return &model.ActionResult{Outcome: outcome, Quote: quote}, nil
}

// ViewQuote : открывает смету по публичному токену и регистрирует просмотр.
// Погашенный токен остается пригодным для просмотра — одноразовым является
// только действие accept/reject.
func (s *ActionService) ViewQuote(ctx context.Context, token string) (*model.Quote, *model.QuoteAccessToken, error) {
	if !tokenFormat.MatchString(token) {
		return nil, nil, ErrLinkInvalid
	}

	accessToken, err := s.tokenRepository.FindByToken(ctx, s.database.DB, token)
	if err != nil {
		return nil, nil, err
	}
	if accessToken == nil || time.Now().After(accessToken.ExpiresAt) {
		return nil, nil, ErrLinkNotFound
	}

	quote, err := s.quoteRepository.GetByUUIDAny(ctx, s.database.DB, accessToken.QuoteUUID)
	if err != nil {
		return nil, nil, err
	}
	if quote == nil {
		return nil, nil, ErrLinkNotFound
	}

	if err := s.tokenRepository.RegisterView(ctx, s.database.DB, token); err != nil {
		log.Printf("[ActionService] не удалось зарегистрировать просмотр %s: %v", token, err)
	}

	return quote, accessToken, nil
}

func (s *ActionService) notifyParties(ctx context.Context, quote *model.Quote, client model.QuoteClient, outcome model.ActionOutcome) {
	verdict := "принята"
	if outcome == model.OutcomeRejected {
		verdict = "отклонена"
	}

	owner, err := s.userRepository.FindByUUID(ctx, s.database.DB, quote.OwnerUUID)
	if err != nil {
		log.Printf("[ActionService] владелец сметы %s не найден: %v", quote.UUID, err)
	} else if owner.CompanyEmail != "" {
		msg := &model.MailMessage{
			To:      owner.CompanyEmail,
			Subject: fmt.Sprintf("Смета № %s %s клиентом", quote.QuoteNumber, verdict),
			HTMLBody: fmt.Sprintf("<p>Смета № %s на сумму %.2f руб. %s клиентом %s.</p>",
				quote.QuoteNumber, quote.Total, verdict, client.Name),
		}
		if err := s.mailer.Send(ctx, msg); err != nil {
			log.Printf("[ActionService] не удалось уведомить владельца сметы %s: %v", quote.UUID, err)
		}
	}

	if client.Email != "" {
		msg := &model.MailMessage{
			To:      client.Email,
			Subject: fmt.Sprintf("Ваш ответ по смете № %s", quote.QuoteNumber),
			HTMLBody: fmt.Sprintf("<p>Ваш ответ зарегистрирован: смета № %s %s.</p>",
				quote.QuoteNumber, verdict),
		}
		if err := s.mailer.Send(ctx, msg); err != nil {
			log.Printf("[ActionService] не удалось уведомить клиента по смете %s: %v", quote.UUID, err)
		}
	}
}

package service

import (
	"context"
	"log"
	"quote-web-server/config"
	"quote-web-server/internal/model"
	"quote-web-server/internal/ports"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Формат публичного токена: канонический UUID в нижнем регистре.
// Токен попадает в URL и в SQL-выборки, поэтому формат проверяется
// и при выдаче, и при приеме.
var tokenFormat = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

const tokenGenerateRetries = 3

// TokenService : выдача одноразовых публичных токенов доступа к смете
type TokenService struct {
	tokenRepository ports.AccessTokenRepository
	database        *config.Database
	tokenDays       int
	generate        func() string
}

func NewTokenService(tokenRepository ports.AccessTokenRepository, database *config.Database, tokenDays int) *TokenService {
	return &TokenService{
		tokenRepository: tokenRepository,
		database:        database,
		tokenDays:       tokenDays,
		generate:        func() string { return uuid.New().String() },
	}
}

// GetOrCreateToken : возвращает действующий токен сметы или выпускает новый.
// Инвариант «не более одного активного токена на смету» поддерживается
// переиспользованием: новый токен не выпускается, пока жив старый.
// При любом сбое возвращает nil без ошибки — доставка продолжается
// в деградированном виде, без публичной ссылки.
func (s *TokenService) GetOrCreateToken(ctx context.Context, quoteUUID string) *model.QuoteAccessToken {
	existing, err := s.tokenRepository.FindActiveByQuote(ctx, s.database.DB, quoteUUID)
	if err != nil {
		log.Printf("[TokenService] ошибка поиска активного токена для %s: %v", quoteUUID, err)
		return nil
	}
	if existing != nil {
		return existing
	}

	var candidate string
	for i := 0; i < tokenGenerateRetries; i++ {
		generated := s.generate()
		if tokenFormat.MatchString(generated) {
			candidate = generated
			break
		}
		log.Printf("[TokenService] сгенерированный токен не прошел проверку формата (попытка %d)", i+1)
	}
	if candidate == "" {
		log.Printf("[TokenService] не удалось сгенерировать токен для %s", quoteUUID)
		return nil
	}

	token := &model.QuoteAccessToken{
		Token:     candidate,
		QuoteUUID: quoteUUID,
		IsActive:  true,
		ExpiresAt: time.Now().Add(time.Duration(s.tokenDays) * 24 * time.Hour),
	}

	if err := s.tokenRepository.Create(ctx, s.database.DB, token); err != nil {
		log.Printf("[TokenService] не удалось сохранить токен для %s: %v", quoteUUID, err)
		return nil
	}

	return token
}

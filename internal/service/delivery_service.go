package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"quote-web-server/config"
	"quote-web-server/internal/model"
	"quote-web-server/internal/ports"
	"quote-web-server/internal/util"
	"time"

	"github.com/google/uuid"
)

// Ошибки оркестратора; хендлер мапит их на HTTP статусы
var (
	ErrInvalidChannel      = errors.New("неизвестный канал доставки")
	ErrRenderTrigger       = errors.New("не удалось запустить генерацию PDF")
	ErrRenderTimeout       = errors.New("генерация PDF не завершилась вовремя")
	ErrArtifactUnreachable = errors.New("сгенерированный PDF недоступен")
	ErrArtifactNotArchived = errors.New("артефакт не сохранен в архиве")
)

// DeliveryService : оркестратор доставки смет. Гарантирует перед отправкой
// свежий и доступный артефакт, выпускает публичный токен и собирает сообщение
// под выбранный канал.
type DeliveryService struct {
	quoteRepository ports.QuoteRepository
	tokenIssuer     ports.TokenIssuer
	renderer        ports.DocumentRenderer
	fetcher         ports.ArtifactFetcher
	composer        *ComposeService
	mailer          ports.Mailer
	cache           ports.CacheRepository
	storage         ports.S3Storage
	database        *config.Database
	presignTTL      time.Duration
}

func NewDeliveryService(
	quoteRepository ports.QuoteRepository,
	tokenIssuer ports.TokenIssuer,
	renderer ports.DocumentRenderer,
	fetcher ports.ArtifactFetcher,
	composer *ComposeService,
	mailer ports.Mailer,
	cache ports.CacheRepository,
	storage ports.S3Storage,
	database *config.Database,
	presignTTL time.Duration,
) *DeliveryService {
	return &DeliveryService{
		quoteRepository: quoteRepository,
		tokenIssuer:     tokenIssuer,
		renderer:        renderer,
		fetcher:         fetcher,
		composer:        composer,
		mailer:          mailer,
		cache:           cache,
		storage:         storage,
		database:        database,
		presignTTL:      presignTTL,
	}
}

// ArtifactFresh : артефакт свежий, если он существует и смета не менялась
// после его генерации. Принятие сметы намеренно не трогает updated_at,
// поэтому ответ клиента не делает артефакт устаревшим.
func ArtifactFresh(quote *model.Quote) bool {
	if quote.PdfURL == "" || quote.PdfGeneratedAt == nil {
		return false
	}
	return !quote.UpdatedAt.After(*quote.PdfGeneratedAt)
}

// EnsureArtifact : возвращает ссылку на актуальный PDF сметы,
// при необходимости запуская генерацию
func (s *DeliveryService) EnsureArtifact(ctx context.Context, quoteUUID string, sender model.SenderContext) (*model.ArtifactResult, error) {
	quote, err := s.loadQuote(ctx, quoteUUID, sender.UserUUID)
	if err != nil {
		return nil, err
	}

	result, _, err := s.ensureArtifact(ctx, quote, sender)
	return result, err
}

// ensureArtifact : цепочка получения артефакта.
//  1. свежий артефакт используется как есть, без обращений к рендереру;
//  2. у устаревшей сметы с незавершенной задачей статус проверяется один раз —
//     рендерер мог закончить работу после таймаута предыдущей попытки;
//  3. запускается новая генерация; мгновенная ссылка в ответе пропускает опрос;
//  4. иначе — ограниченный опрос статуса;
//  5. полученная ссылка проверяется скачиванием; недоступный артефакт дает
//     ровно одну принудительную перегенерацию.
//
// Возвращает также скачанные байты, если проверка доступности их получила.
func (s *DeliveryService) ensureArtifact(ctx context.Context, quote *model.Quote, sender model.SenderContext) (*model.ArtifactResult, []byte, error) {
	if ArtifactFresh(quote) {
		return artifactResultOf(quote), nil, nil
	}

	// шаг 2: одиночная проверка незавершенной задачи. Выполняется только когда
	// ссылка так и не была записана: рендерер мог закончить работу после того,
	// как предыдущая попытка исчерпала опрос. Для отредактированной сметы старая
	// задача бесполезна, ее результат не соответствует текущему содержимому.
	if quote.PdfDocumentID != "" && quote.PdfURL == "" {
		url, err := s.renderer.CheckStatus(ctx, quote.PdfDocumentID)
		if err != nil {
			log.Printf("[DeliveryService] проверка незавершенной задачи %s не удалась: %v", quote.PdfDocumentID, err)
		}
		if url != "" {
			data, fetchErr := s.fetcher.FetchArtifact(ctx, url)
			if fetchErr == nil {
				if err := s.persistArtifact(ctx, quote, url, quote.PdfDocumentID, data); err != nil {
					return nil, nil, err
				}
				return artifactResultOf(quote), data, nil
			}
			log.Printf("[DeliveryService] восстановленная ссылка недоступна: %v", fetchErr)
		}
	}

	url, documentID, err := s.renderPipeline(ctx, quote, sender, quote.PdfURL != "")
	if err != nil {
		return nil, nil, err
	}

	data, fetchErr := s.fetcher.FetchArtifact(ctx, url)
	if fetchErr != nil {
		// шаг 5: ровно одна принудительная перегенерация
		log.Printf("[DeliveryService] артефакт %s недоступен, перегенерация: %v", url, fetchErr)
		url, documentID, err = s.renderPipeline(ctx, quote, sender, true)
		if err != nil {
			return nil, nil, err
		}
		data, fetchErr = s.fetcher.FetchArtifact(ctx, url)
		if fetchErr != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrArtifactUnreachable, fetchErr)
		}
	}

	if err := s.persistArtifact(ctx, quote, url, documentID, data); err != nil {
		return nil, nil, err
	}

	return artifactResultOf(quote), data, nil
}

// artifactResultOf : снимок зафиксированного артефакта для ответа API
func artifactResultOf(quote *model.Quote) *model.ArtifactResult {
	result := &model.ArtifactResult{
		URL:        quote.PdfURL,
		DocumentID: quote.PdfDocumentID,
		Version:    quote.PdfVersion,
	}
	if quote.PdfGeneratedAt != nil {
		result.GeneratedAt = *quote.PdfGeneratedAt
	}
	return result
}

// renderPipeline : запуск генерации + опрос; шаги 3-4 цепочки
func (s *DeliveryService) renderPipeline(ctx context.Context, quote *model.Quote, sender model.SenderContext, force bool) (string, string, error) {
	result, err := s.renderer.TriggerRender(ctx, quote, sender, force)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrRenderTrigger, err)
	}

	if result.URL != "" {
		return result.URL, result.DocumentID, nil
	}
	if result.DocumentID == "" {
		return "", "", fmt.Errorf("%w: рендерер не вернул ни ссылку, ни id задачи", ErrRenderTrigger)
	}

	url, err := s.renderer.PollForArtifact(ctx, result.DocumentID)
	if err != nil {
		return "", "", util.LogError("[DeliveryService] опрос рендерера прерван", err)
	}
	if url == "" {
		return "", "", fmt.Errorf("%w: задача %s", ErrRenderTimeout, result.DocumentID)
	}

	return url, result.DocumentID, nil
}

// persistArtifact : фиксирует артефакт в БД, архивирует байты в S3 и
// инвалидирует кэш. Архивация best-effort: сбой S3 не блокирует доставку.
func (s *DeliveryService) persistArtifact(ctx context.Context, quote *model.Quote, url, documentID string, data []byte) error {
	storagePath := ""
	if len(data) > 0 {
		key := fmt.Sprintf("quotes/%s/v%d.pdf", quote.UUID, quote.PdfVersion+1)
		if err := s.storage.UploadObject(ctx, key, data, "application/pdf"); err != nil {
			log.Printf("[DeliveryService] не удалось архивировать артефакт %s: %v", key, err)
		} else {
			storagePath = key
		}
	}

	generatedAt := time.Now()
	if err := s.quoteRepository.UpdateArtifact(ctx, s.database.DB, quote.UUID, url, documentID, storagePath, generatedAt); err != nil {
		return err
	}

	// предыдущая архивная копия вытеснена новой версией
	if previous := quote.PdfStoragePath; previous != "" && storagePath != "" && previous != storagePath {
		if err := s.storage.DeleteObject(ctx, previous); err != nil {
			log.Printf("[DeliveryService] не удалось удалить устаревший архив %s: %v", previous, err)
		}
	}

	quote.PdfURL = url
	quote.PdfDocumentID = documentID
	quote.PdfStoragePath = storagePath
	quote.PdfGeneratedAt = &generatedAt
	quote.PdfVersion++

	if err := s.cache.DeleteQuote(ctx, quote.UUID); err != nil {
		log.Printf("[DeliveryService] не удалось инвалидировать кэш сметы %s: %v", quote.UUID, err)
	}

	event := &model.QuoteEvent{
		UUID:        uuid.New().String(),
		QuoteUUID:   quote.UUID,
		Kind:        model.EventArtifactGenerated,
		ArtifactURL: url,
	}
	if err := s.quoteRepository.InsertEvent(ctx, s.database.DB, event); err != nil {
		log.Printf("[DeliveryService] не удалось сохранить событие генерации: %v", err)
	}

	return nil
}

// SendQuote : полный цикл отправки сметы по выбранному каналу
func (s *DeliveryService) SendQuote(ctx context.Context, quoteUUID string, channel model.Channel, recipient model.Recipient, sender model.SenderContext) (*model.ChannelPayload, error) {
	if !channel.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidChannel, channel)
	}

	quote, err := s.loadQuote(ctx, quoteUUID, sender.UserUUID)
	if err != nil {
		return nil, err
	}

	artifact, data, err := s.ensureArtifact(ctx, quote, sender)
	if err != nil {
		return nil, err
	}

	// nil токен деградирует сообщение до варианта без ссылки принятия
	token := s.tokenIssuer.GetOrCreateToken(ctx, quote.UUID)

	payload := s.composer.Compose(quote, channel, recipient, sender, token, artifact.URL)

	if channel.RequiresAttachment() {
		if data == nil {
			data, err = s.fetcher.FetchArtifact(ctx, artifact.URL)
			if err != nil {
				// канал требует байты — без них отправка невозможна
				return nil, fmt.Errorf("%w: %v", ErrArtifactUnreachable, err)
			}
		}
		payload.Attachment = data

		if err := s.mailer.Send(ctx, &model.MailMessage{
			To:             payload.RecipientEmail,
			Subject:        payload.Subject,
			HTMLBody:       payload.BodyHTML,
			AttachmentName: payload.AttachmentName,
			Attachment:     payload.Attachment,
		}); err != nil {
			return nil, err
		}
	}

	if err := s.quoteRepository.MarkSent(ctx, s.database.DB, quote.UUID); err != nil {
		return nil, err
	}
	if err := s.cache.DeleteQuote(ctx, quote.UUID); err != nil {
		log.Printf("[DeliveryService] не удалось инвалидировать кэш сметы %s: %v", quote.UUID, err)
	}

	event := &model.QuoteEvent{
		UUID:        uuid.New().String(),
		QuoteUUID:   quote.UUID,
		Kind:        model.EventQuoteSent,
		Channel:     string(channel),
		ArtifactURL: artifact.URL,
	}
	if err := s.quoteRepository.InsertEvent(ctx, s.database.DB, event); err != nil {
		log.Printf("[DeliveryService] не удалось сохранить событие отправки: %v", err)
	}

	return payload, nil
}

// ArchiveLink : presigned ссылка на архивную копию PDF для владельца сметы
func (s *DeliveryService) ArchiveLink(ctx context.Context, quoteUUID string, ownerUUID string) (string, error) {
	quote, err := s.loadQuote(ctx, quoteUUID, ownerUUID)
	if err != nil {
		return "", err
	}

	if quote.PdfStoragePath == "" {
		return "", ErrArtifactNotArchived
	}

	return s.storage.GeneratePresignedGetURL(ctx, quote.PdfStoragePath, s.presignTTL)
}

// loadQuote : читает смету через кэш с проверкой владельца
func (s *DeliveryService) loadQuote(ctx context.Context, quoteUUID string, ownerUUID string) (*model.Quote, error) {
	cached, err := s.cache.GetQuote(ctx, quoteUUID)
	if err == nil && cached != nil && cached.OwnerUUID == ownerUUID {
		return cached, nil
	}

	quote, err := s.quoteRepository.GetByUUID(ctx, s.database.DB, quoteUUID, ownerUUID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetQuote(ctx, quote); err != nil {
		log.Printf("[DeliveryService] не удалось закэшировать смету %s: %v", quote.UUID, err)
	}

	return quote, nil
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"quote-web-server/config"
	"quote-web-server/internal/model"
	requestresponse "quote-web-server/internal/model/requestresponse"
	"quote-web-server/internal/ports"
	"quote-web-server/internal/security"
	"quote-web-server/internal/service"
	"quote-web-server/internal/util"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

type QuoteHandler struct {
	ports.QuoteDeliveryService
	userRepository ports.UserRepository
	database       *config.Database
	publicOrigin   string
	cfg            *config.TTL
}

func NewQuoteHandler(
	deliveryService ports.QuoteDeliveryService,
	userRepository ports.UserRepository,
	database *config.Database,
	publicOrigin string,
	cfg *config.TTL,
) *QuoteHandler {
	return &QuoteHandler{deliveryService, userRepository, database, publicOrigin, cfg}
}

// SendQuote godoc
// @Summary Отправка сметы клиенту
// @Description Гарантирует свежий PDF, выпускает публичную ссылку и отправляет
// смету по выбранному каналу: email (письмо с вложением), mailto или whatsapp
// (deep link для внешнего приложения).
// @Tags Quotes
// @Accept json
// @Produce json
// @Param quote_id path string true "UUID сметы"
// @Param request body requestresponse.SendQuoteRequest true "Канал и получатель"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SendQuoteResponse "Смета отправлена"
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный канал или тело запроса"
// @Failure 401 {object} requestresponse.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} requestresponse.ErrorResponse "Смета не найдена"
// @Failure 502 {object} requestresponse.ErrorResponse "Рендерер не вернул документ"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/quotes/{quote_id}/send [post]
func (h *QuoteHandler) SendQuote(w http.ResponseWriter, r *http.Request) {
	// потолок опроса рендерера ~90 секунд, таймаут должен его переживать
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Minute)
	defer cancel()

	quoteUUID := chi.URLParam(r, "quote_id")
	if quoteUUID == "" {
		util.HandleError(w, "не указан id сметы", http.StatusBadRequest)
		return
	}

	var request requestresponse.SendQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}

	sender, err := h.senderContext(ctx)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	payload, err := h.QuoteDeliveryService.SendQuote(ctx, quoteUUID,
		model.Channel(request.Channel),
		model.Recipient{Email: request.RecipientEmail, Phone: request.RecipientPhone},
		sender,
	)
	if err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, service.ErrInvalidChannel):
			util.HandleError(w, "неизвестный канал доставки", http.StatusBadRequest)
		case errors.Is(err, service.ErrRenderTrigger),
			errors.Is(err, service.ErrRenderTimeout),
			errors.Is(err, service.ErrArtifactUnreachable):
			util.HandleError(w, "не удалось подготовить PDF сметы", http.StatusBadGateway)
		case strings.Contains(err.Error(), "смета не найдена"):
			util.HandleError(w, "смета не найдена", http.StatusNotFound)
		case strings.Contains(err.Error(), "не удалось отправить письмо"):
			util.HandleError(w, "не удалось отправить письмо", http.StatusBadGateway)
		default:
			util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	response := requestresponse.SendQuoteResponse{
		Channel:        string(payload.Channel),
		Status:         model.QuoteStatusSent,
		ArtifactURL:    payload.ArtifactURL,
		AcceptanceLink: payload.AcceptanceLink,
		DeepLink:       payload.DeepLink,
	}

	writeJSON(w, http.StatusOK, response)
}

// EnsureArtifact godoc
// @Summary Принудительная генерация PDF сметы
// @Description Запускает цепочку получения артефакта: свежий PDF возвращается
// как есть, устаревший перегенерируется через внешний рендерер.
// @Tags Quotes
// @Produce json
// @Param quote_id path string true "UUID сметы"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.EnsureArtifactResponse "Актуальная ссылка на PDF"
// @Failure 401 {object} requestresponse.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} requestresponse.ErrorResponse "Смета не найдена"
// @Failure 502 {object} requestresponse.ErrorResponse "Рендерер не вернул документ"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/quotes/{quote_id}/artifact [post]
func (h *QuoteHandler) EnsureArtifact(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Minute)
	defer cancel()

	quoteUUID := chi.URLParam(r, "quote_id")
	if quoteUUID == "" {
		util.HandleError(w, "не указан id сметы", http.StatusBadRequest)
		return
	}

	sender, err := h.senderContext(ctx)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	result, err := h.QuoteDeliveryService.EnsureArtifact(ctx, quoteUUID, sender)
	if err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, service.ErrRenderTrigger),
			errors.Is(err, service.ErrRenderTimeout),
			errors.Is(err, service.ErrArtifactUnreachable):
			util.HandleError(w, "не удалось подготовить PDF сметы", http.StatusBadGateway)
		case strings.Contains(err.Error(), "смета не найдена"):
			util.HandleError(w, "смета не найдена", http.StatusNotFound)
		default:
			util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	response := requestresponse.EnsureArtifactResponse{
		ArtifactURL:   result.URL,
		PdfDocumentID: result.DocumentID,
		PdfVersion:    result.Version,
		GeneratedAt:   result.GeneratedAt.Format(time.RFC3339),
	}

	writeJSON(w, http.StatusOK, response)
}

// ArtifactLink godoc
// @Summary Presigned ссылка на архивную копию PDF
// @Description Возвращает временную ссылку на архивную копию артефакта в S3.
// @Tags Quotes
// @Produce json
// @Param quote_id path string true "UUID сметы"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ArtifactLinkResponse "Временная ссылка"
// @Failure 401 {object} requestresponse.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} requestresponse.ErrorResponse "Смета или архивная копия не найдены"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/quotes/{quote_id}/artifact [get]
func (h *QuoteHandler) ArtifactLink(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	quoteUUID := chi.URLParam(r, "quote_id")
	if quoteUUID == "" {
		util.HandleError(w, "не указан id сметы", http.StatusBadRequest)
		return
	}

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	getURL, err := h.QuoteDeliveryService.ArchiveLink(ctx, quoteUUID, claims.UserUUID)
	if err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, service.ErrArtifactNotArchived):
			util.HandleError(w, "архивная копия не найдена", http.StatusNotFound)
		case strings.Contains(err.Error(), "смета не найдена"):
			util.HandleError(w, "смета не найдена", http.StatusNotFound)
		default:
			util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	response := requestresponse.ArtifactLinkResponse{
		GetURL:    getURL,
		ExpiresIn: fmt.Sprintf("%ds", h.cfg.S3AndRedis),
	}

	writeJSON(w, http.StatusOK, response)
}

// senderContext : собирает контекст отправителя из claims и профиля компании
func (h *QuoteHandler) senderContext(ctx context.Context) (model.SenderContext, error) {
	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		return model.SenderContext{}, err
	}

	user, err := h.userRepository.FindByUUID(ctx, h.database.DB, claims.UserUUID)
	if err != nil {
		return model.SenderContext{}, err
	}

	return model.SenderContextFromUser(user, h.publicOrigin), nil
}

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("ошибка сериализации ответа: %v", err)
	}
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"quote-web-server/config"
	"quote-web-server/internal/model"
	"quote-web-server/internal/util"
	"time"
)

// Потолок опроса рендерера: 45 проверок с паузой 2 секунды (~90 секунд).
// Без джиттера и экспоненты — осознанный размен простоты на латентность
// при жестком ограниченном потолке.
const (
	defaultPollAttempts = 45
	defaultPollInterval = 2 * time.Second
)

// RendererService : клиент внешнего сервиса генерации PDF
type RendererService struct {
	config       *config.RendererConfig
	httpClient   *http.Client
	pollAttempts int
	pollInterval time.Duration
}

func NewRendererService(cfg *config.RendererConfig) *RendererService {
	return &RendererService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		pollAttempts: defaultPollAttempts,
		pollInterval: defaultPollInterval,
	}
}

// renderTriggerRequest : запрос на генерацию документа
type renderTriggerRequest struct {
	Document renderDocumentPayload `json:"document"`
}

type renderDocumentPayload struct {
	TemplateID      string                 `json:"template_id"`
	Payload         map[string]interface{} `json:"payload"`
	ForceRegenerate bool                   `json:"force_regenerate,omitempty"`
}

// renderDocumentResponse : ответ рендерера; download_url пуст, пока документ не готов
type renderDocumentResponse struct {
	Document struct {
		ID          string `json:"id"`
		Status      string `json:"status"` // pending, generating, success, failure
		DownloadURL string `json:"download_url"`
		ErrorMsg    string `json:"failure_cause,omitempty"`
	} `json:"document"`
}

// TriggerRender : запускает генерацию; возвращает либо готовую ссылку,
// либо id задачи для последующего опроса
func (s *RendererService) TriggerRender(ctx context.Context, quote *model.Quote, sender model.SenderContext, force bool) (*model.ArtifactResult, error) {
	client := quote.Client()

	reqBody := renderTriggerRequest{
		Document: renderDocumentPayload{
			TemplateID: s.config.TemplateID,
			Payload: map[string]interface{}{
				"quote_number": quote.QuoteNumber,
				"client_name":  client.Name,
				"items":        json.RawMessage(quote.Items),
				"subtotal":     quote.Subtotal,
				"vat_amount":   quote.VatAmount,
				"total":        quote.Total,
				"expiry_date":  quote.ExpiryDate.Format("2006-01-02"),
				"notes":        quote.Notes,
				"company_name": sender.CompanyName,
			},
			ForceRegenerate: force,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, util.LogError("[RendererService] ошибка сериализации запроса", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIURL+"/documents", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, util.LogError("[RendererService] не удалось создать запрос", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, util.LogError("[RendererService] не удалось отправить запрос", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, util.LogError("[RendererService] не удалось прочитать ответ", err)
	}

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("[RendererService] рендерер вернул статус %d: %s", resp.StatusCode, string(body))
	}

	var result renderDocumentResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, util.LogError("[RendererService] не удалось разобрать ответ", err)
	}

	if result.Document.Status == "failure" {
		return nil, fmt.Errorf("[RendererService] ошибка генерации: %s", result.Document.ErrorMsg)
	}

	return &model.ArtifactResult{
		URL:        result.Document.DownloadURL,
		DocumentID: result.Document.ID,
	}, nil
}

// CheckStatus : одиночная проверка статуса задачи; "" пока документ не готов
func (s *RendererService) CheckStatus(ctx context.Context, documentID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/documents/%s", s.config.APIURL, documentID), nil)
	if err != nil {
		return "", util.LogError("[RendererService] не удалось создать запрос", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", util.LogError("[RendererService] не удалось отправить запрос", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", util.LogError("[RendererService] не удалось прочитать ответ", err)
	}

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("[RendererService] рендерер вернул статус %d", resp.StatusCode)
	}

	var result renderDocumentResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", util.LogError("[RendererService] не удалось разобрать ответ", err)
	}

	return result.Document.DownloadURL, nil
}

// PollForArtifact : ограниченный опрос статуса. Возвращает ссылку при первом
// успешном ответе, "" без ошибки при исчерпании попыток — решение о следующем
// шаге остается за вызывающим. Один и тот же documentID никогда не опрашивается
// двумя вызовами параллельно (гарантия оркестратора).
func (s *RendererService) PollForArtifact(ctx context.Context, documentID string) (string, error) {
	for attempt := 0; attempt < s.pollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(s.pollInterval):
			}
		}

		url, err := s.CheckStatus(ctx, documentID)
		if err != nil {
			// неудачная проверка расходует попытку, но не прерывает опрос
			log.Printf("[RendererService] ошибка проверки статуса %s (попытка %d): %v", documentID, attempt+1, err)
			continue
		}
		if url != "" {
			return url, nil
		}
	}

	log.Printf("[RendererService] задача %s не завершилась за %d попыток", documentID, s.pollAttempts)
	return "", nil
}

// FetchArtifact : скачивает артефакт; заодно служит проверкой доступности ссылки
func (s *RendererService) FetchArtifact(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, util.LogError("[RendererService] не удалось создать запрос", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, util.LogError("[RendererService] артефакт недоступен", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("[RendererService] артефакт недоступен, статус %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, util.LogError("[RendererService] не удалось прочитать артефакт", err)
	}

	return data, nil
}

package handler

import (
	"context"
	"errors"
	"html/template"
	"log"
	"net/http"
	"quote-web-server/internal/model"
	"quote-web-server/internal/ports"
	"quote-web-server/internal/service"
	"quote-web-server/internal/util"
	"time"

	"github.com/go-chi/chi/v5"
)

// PublicHandler : публичные страницы сметы, доступные по одноразовому токену.
// Бизнес-исходы действия (погашенный токен, повторный ответ) отдаются как
// HTML-страницы со статусом 200; статус 400 зарезервирован за синтаксически
// некорректным запросом.
type PublicHandler struct {
	actionService ports.QuoteActionService
}

func NewPublicHandler(actionService ports.QuoteActionService) *PublicHandler {
	return &PublicHandler{actionService}
}

var viewTemplate = template.Must(template.New("view").Parse(`<!DOCTYPE html>
<html lang="ru">
<head><meta charset="utf-8"><title>Смета № {{.QuoteNumber}}</title></head>
<body>
<h1>Смета № {{.QuoteNumber}}</h1>
<p>Сумма: {{printf "%.2f" .Total}} руб.</p>
<p>Действительна до: {{.ExpiryDate}}</p>
{{if .PdfURL}}<p><a href="{{.PdfURL}}">Скачать PDF</a></p>{{end}}
{{if .Responded}}
<p>Ответ по смете уже зарегистрирован: {{.Verdict}}.</p>
{{else}}
<p>
<a href="/public/quotes/respond?token={{.Token}}&action=accept">Принять смету</a> |
<a href="/public/quotes/respond?token={{.Token}}&action=reject">Отклонить смету</a>
</p>
{{end}}
</body>
</html>`))

var resultTemplate = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html lang="ru">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
</body>
</html>`))

type viewPageData struct {
	Token       string
	QuoteNumber string
	Total       float64
	ExpiryDate  string
	PdfURL      string
	Responded   bool
	Verdict     string
}

type resultPageData struct {
	Title   string
	Message string
}

// ViewQuote godoc
// @Summary Публичная страница сметы
// @Description Показывает смету по одноразовому токену и учитывает просмотр.
// @Tags Public
// @Produce html
// @Param token path string true "Публичный токен"
// @Success 200 {string} string "HTML страница сметы"
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректная ссылка"
// @Failure 404 {object} requestresponse.ErrorResponse "Ссылка не найдена или просрочена"
// @Router /public-document/{token} [get]
func (h *PublicHandler) ViewQuote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	token := chi.URLParam(r, "token")

	quote, accessToken, err := h.actionService.ViewQuote(ctx, token)
	if err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, service.ErrLinkInvalid):
			util.HandleError(w, "некорректная ссылка", http.StatusBadRequest)
		case errors.Is(err, service.ErrLinkNotFound):
			util.HandleError(w, "ссылка не найдена или просрочена", http.StatusNotFound)
		default:
			util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	data := viewPageData{
		Token:       accessToken.Token,
		QuoteNumber: quote.QuoteNumber,
		Total:       quote.Total,
		ExpiryDate:  quote.ExpiryDate.Format("02.01.2006"),
		PdfURL:      quote.PdfURL,
	}
	if quote.AcceptanceStatus != nil {
		data.Responded = true
		data.Verdict = verdictText(*quote.AcceptanceStatus)
	}

	renderHTML(w, http.StatusOK, viewTemplate, data)
}

// Respond godoc
// @Summary Ответ клиента по смете
// @Description Обрабатывает accept/reject по одноразовому токену. Исход гонки
// параллельных кликов решает условный UPDATE; проигравший видит результат победителя.
// @Tags Public
// @Produce html
// @Param token query string true "Публичный токен"
// @Param action query string true "accept или reject"
// @Success 200 {string} string "HTML страница с результатом"
// @Failure 400 {object} requestresponse.ErrorResponse "Отсутствует token или action"
// @Router /public/quotes/respond [get]
func (h *PublicHandler) Respond(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	token := r.URL.Query().Get("token")
	action := r.URL.Query().Get("action")
	if token == "" || action == "" {
		util.HandleError(w, "отсутствует token или action", http.StatusBadRequest)
		return
	}

	meta := model.RequestMeta{
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	}

	result, err := h.actionService.Respond(ctx, token, action, meta)
	if err != nil {
		log.Println(err)
		util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	renderHTML(w, http.StatusOK, resultTemplate, resultPage(result))
}

func resultPage(result *model.ActionResult) resultPageData {
	switch result.Outcome {
	case model.OutcomeAccepted:
		return resultPageData{
			Title:   "Смета принята",
			Message: "Спасибо! Ваше решение зарегистрировано, исполнитель получил уведомление.",
		}
	case model.OutcomeRejected:
		return resultPageData{
			Title:   "Смета отклонена",
			Message: "Ваше решение зарегистрировано, исполнитель получил уведомление.",
		}
	case model.OutcomeAlreadyResponded:
		verdict := ""
		if result.Quote != nil && result.Quote.AcceptanceStatus != nil {
			verdict = " Текущий статус: " + verdictText(*result.Quote.AcceptanceStatus) + "."
		}
		return resultPageData{
			Title:   "Ответ уже зарегистрирован",
			Message: "По этой смете решение уже было принято." + verdict,
		}
	case model.OutcomeAlreadyUsed:
		return resultPageData{
			Title:   "Ссылка уже использована",
			Message: "Эта ссылка одноразовая и была использована ранее.",
		}
	case model.OutcomeTokenNotFound:
		return resultPageData{
			Title:   "Ссылка недействительна",
			Message: "Ссылка не найдена или срок ее действия истек. Запросите новую у исполнителя.",
		}
	case model.OutcomeQuoteMissing:
		return resultPageData{
			Title:   "Смета не найдена",
			Message: "Смета по этой ссылке больше не существует.",
		}
	default:
		return resultPageData{
			Title:   "Некорректная ссылка",
			Message: "Проверьте адрес ссылки и попробуйте еще раз.",
		}
	}
}

func verdictText(acceptance string) string {
	if acceptance == model.AcceptanceAccepted {
		return "принята"
	}
	return "отклонена"
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	return r.RemoteAddr
}

func renderHTML(w http.ResponseWriter, statusCode int, tmpl *template.Template, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := tmpl.Execute(w, data); err != nil {
		log.Printf("ошибка рендеринга страницы: %v", err)
	}
}

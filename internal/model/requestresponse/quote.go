package requestresponse

// SendQuoteRequest : тело запроса на отправку сметы клиенту
type SendQuoteRequest struct {
	Channel        string `json:"channel" example:"email"` // email | mailto | whatsapp
	RecipientEmail string `json:"recipient_email,omitempty" example:"client@example.com"`
	RecipientPhone string `json:"recipient_phone,omitempty" example:"+447911123456"`
}

// SendQuoteResponse : результат отправки; для каналов mailto/whatsapp содержит
// deep link, который фронтенд открывает во внешнем приложении
type SendQuoteResponse struct {
	Channel        string `json:"channel" example:"email"`
	Status         string `json:"status" example:"sent"`
	ArtifactURL    string `json:"artifact_url" example:"https://renderer.example/download/abc.pdf"`
	AcceptanceLink string `json:"acceptance_link,omitempty" example:"https://app.example.com/public-document/6f1e..."`
	DeepLink       string `json:"deep_link,omitempty" example:"mailto:client@example.com?subject=..."`
}

// EnsureArtifactResponse : результат принудительной генерации PDF
type EnsureArtifactResponse struct {
	ArtifactURL   string `json:"artifact_url"`
	PdfDocumentID string `json:"pdf_document_id"`
	PdfVersion    int    `json:"pdf_version"`
	GeneratedAt   string `json:"generated_at"`
}

// ArtifactLinkResponse : presigned ссылка на архивную копию PDF
type ArtifactLinkResponse struct {
	GetURL    string `json:"get_url"`
	ExpiresIn string `json:"expires_in,omitempty"`
}

// ErrorResponse : общий объект ошибки
type ErrorResponse struct {
	Error   string `json:"error" example:"Bad Request"`
	Message string `json:"message" example:"описание ошибки"`
	Code    int    `json:"code" example:"400"`
}

// ResponseMessage : общий ответ для подтверждения действий
type ResponseMessage struct {
	Response map[string]interface{} `json:"response,omitempty"`
	Error    *ErrorResponse         `json:"error,omitempty"`
	Data     interface{}            `json:"data,omitempty"`
}

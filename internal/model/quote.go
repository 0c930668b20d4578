package model

import (
	"encoding/json"
	"time"
)

// Статусы жизненного цикла сметы
const (
	QuoteStatusDraft    = "draft"
	QuoteStatusSent     = "sent"
	QuoteStatusApproved = "approved"
	QuoteStatusRejected = "rejected"
)

// Статусы ответа клиента; acceptance_status выставляется ровно один раз
const (
	AcceptanceAccepted = "accepted"
	AcceptanceRejected = "rejected"
)

type Quote struct {
	UUID              string          `db:"uuid" json:"uuid"`
	OwnerUUID         string          `db:"owner_uuid" json:"owner_uuid"`
	QuoteNumber       string          `db:"quote_number" json:"quote_number"`
	ClientData        json.RawMessage `db:"client_data" json:"client_data"`
	Items             json.RawMessage `db:"items" json:"items"`
	Subtotal          float64         `db:"subtotal" json:"subtotal"`
	VatAmount         float64         `db:"vat_amount" json:"vat_amount"`
	Total             float64         `db:"total" json:"total"`
	ExpiryDate        time.Time       `db:"expiry_date" json:"expiry_date"`
	Notes             string          `db:"notes" json:"notes"`
	Status            string          `db:"status" json:"status"`
	AcceptanceStatus  *string         `db:"acceptance_status" json:"acceptance_status,omitempty"`
	AcceptedAt        *time.Time      `db:"accepted_at" json:"accepted_at,omitempty"`
	AcceptedByName    *string         `db:"accepted_by_name" json:"accepted_by_name,omitempty"`
	AcceptedByEmail   *string         `db:"accepted_by_email" json:"accepted_by_email,omitempty"`
	AcceptedIP        *string         `db:"accepted_ip" json:"accepted_ip,omitempty"`
	AcceptedUserAgent *string         `db:"accepted_user_agent" json:"accepted_user_agent,omitempty"`
	AcceptanceMethod  *string         `db:"acceptance_method" json:"acceptance_method,omitempty"`
	PdfURL            string          `db:"pdf_url" json:"pdf_url"`
	PdfDocumentID     string          `db:"pdf_document_id" json:"pdf_document_id"`
	PdfGeneratedAt    *time.Time      `db:"pdf_generated_at" json:"pdf_generated_at,omitempty"`
	PdfVersion        int             `db:"pdf_version" json:"pdf_version"`
	PdfStoragePath    string          `db:"pdf_storage_path" json:"pdf_storage_path"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
	DeletedAt         *time.Time      `db:"deleted_at" json:"deleted_at,omitempty"`
}

// QuoteClient : распакованный client_data
type QuoteClient struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Client : парсит client_data; при пустом/битом JSON возвращает пустую структуру
func (q *Quote) Client() QuoteClient {
	var c QuoteClient
	if len(q.ClientData) > 0 {
		_ = json.Unmarshal(q.ClientData, &c)
	}
	return c
}

// Типы событий аудита по смете
const (
	EventArtifactGenerated = "artifact_generated"
	EventQuoteSent         = "quote_sent"
	EventQuoteAccepted     = "quote_accepted"
	EventQuoteRejected     = "quote_rejected"
)

// QuoteEvent : запись аудита; одна строка на попытку доставки или ответ клиента
type QuoteEvent struct {
	UUID        string    `db:"uuid" json:"uuid"`
	QuoteUUID   string    `db:"quote_uuid" json:"quote_uuid"`
	Kind        string    `db:"kind" json:"kind"`
	Channel     string    `db:"channel" json:"channel"`
	ArtifactURL string    `db:"artifact_url" json:"artifact_url"`
	Detail      string    `db:"detail" json:"detail"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ArtifactResult : результат работы оркестратора доставки
type ArtifactResult struct {
	URL         string
	DocumentID  string
	Version     int
	GeneratedAt time.Time
}

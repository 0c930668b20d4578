package model

// Channel : канал доставки сметы клиенту
type Channel string

const (
	// ChannelEmail : транзакционное письмо с вложенным PDF, отправляется сервером
	ChannelEmail Channel = "email"
	// ChannelMailto : deep link для личного почтового клиента отправителя
	ChannelMailto Channel = "mailto"
	// ChannelWhatsApp : deep link для WhatsApp
	ChannelWhatsApp Channel = "whatsapp"
)

// RequiresAttachment : только транзакционный email требует байты PDF;
// остальные каналы передают композицию во внешнее приложение и работают по ссылке
func (c Channel) RequiresAttachment() bool {
	return c == ChannelEmail
}

func (c Channel) Valid() bool {
	switch c {
	case ChannelEmail, ChannelMailto, ChannelWhatsApp:
		return true
	}
	return false
}

// ChannelPayload : собранное сообщение для конкретного канала.
// Каналы различаются capability-флагом, а не иерархией типов.
type ChannelPayload struct {
	Channel        Channel
	Subject        string
	BodyHTML       string
	BodyText       string
	ArtifactURL    string
	AcceptanceLink string // пусто, если публичный токен недоступен
	DeepLink       string // mailto:/wa.me ссылка для каналов без отправки сервером
	Attachment     []byte // только для ChannelEmail
	AttachmentName string
	RecipientEmail string
}

// Recipient : получатель; пустые поля заполняются из client_data сметы
type Recipient struct {
	Email string
	Phone string
}

// MailMessage : письмо для SMTP-отправки
type MailMessage struct {
	To             string
	Subject        string
	HTMLBody       string
	AttachmentName string
	Attachment     []byte
}

// RequestMeta : атрибуция входящего публичного запроса
type RequestMeta struct {
	IP        string
	UserAgent string
}

// ActionOutcome : исход обработки публичного действия accept/reject
type ActionOutcome string

const (
	OutcomeAccepted         ActionOutcome = "accepted"
	OutcomeRejected         ActionOutcome = "rejected"
	OutcomeInvalidLink      ActionOutcome = "invalid_link"      // токен/действие не прошли валидацию формата
	OutcomeTokenNotFound    ActionOutcome = "token_not_found"   // токен не найден или просрочен
	OutcomeAlreadyUsed      ActionOutcome = "already_used"      // токен уже погашен
	OutcomeQuoteMissing     ActionOutcome = "quote_missing"     // смета не найдена
	OutcomeAlreadyResponded ActionOutcome = "already_responded" // по смете уже есть ответ
)

// ActionResult : результат работы state machine публичного действия
type ActionResult struct {
	Outcome ActionOutcome
	Quote   *Quote
}

// AcceptanceUpdate : данные условного перехода acceptance_status
type AcceptanceUpdate struct {
	Status           string // терминальный status сметы (approved/rejected)
	AcceptanceStatus string // accepted/rejected
	ByName           string
	ByEmail          string
	IP               string
	UserAgent        string
	Method           string // канал, через который пришел ответ (public_link)
}

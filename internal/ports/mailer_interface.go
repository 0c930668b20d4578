package ports

import (
	"context"
	"quote-web-server/internal/model"
)

// Mailer : отправка транзакционных писем (SMTP)
type Mailer interface {
	Send(ctx context.Context, msg *model.MailMessage) error
}

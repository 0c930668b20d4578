package service

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"quote-web-server/config"
	"quote-web-server/internal/model"
	"quote-web-server/internal/util"
	"strconv"
	"strings"
)

// MailerService : отправка транзакционных писем через SMTP
type MailerService struct {
	config *config.SMTPConfig
}

func NewMailerService(cfg *config.SMTPConfig) *MailerService {
	return &MailerService{config: cfg}
}

// Send : отправляет письмо; при наличии вложения собирает multipart MIME
func (s *MailerService) Send(ctx context.Context, msg *model.MailMessage) error {
	if msg.To == "" {
		return fmt.Errorf("[MailerService] пустой адрес получателя")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	body := s.buildBody(msg)
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	var auth smtp.Auth
	if s.config.Username != "" && s.config.Password != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	if s.config.TLS {
		if err := s.sendTLS(addr, auth, msg.To, body); err != nil {
			return util.LogError("[MailerService] не удалось отправить письмо", err)
		}
		return nil
	}

	if err := smtp.SendMail(addr, auth, s.config.From, []string{msg.To}, body); err != nil {
		return util.LogError("[MailerService] не удалось отправить письмо", err)
	}
	return nil
}

func (s *MailerService) sendTLS(addr string, auth smtp.Auth, to string, body []byte) error {
	tlsConfig := &tls.Config{
		ServerName: s.config.Host,
		MinVersion: tls.VersionTLS12,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("tls dial %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(s.config.From); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp RCPT TO %s: %w", to, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("smtp write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}

	return client.Quit()
}

const mimeBoundary = "quote-mime-boundary"

func (s *MailerService) buildBody(msg *model.MailMessage) []byte {
	var b strings.Builder

	b.WriteString("From: " + s.config.From + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")

	if len(msg.Attachment) == 0 {
		b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
		b.WriteString("\r\n")
		b.WriteString(msg.HTMLBody)
		return []byte(b.String())
	}

	b.WriteString("Content-Type: multipart/mixed; boundary=\"" + mimeBoundary + "\"\r\n")
	b.WriteString("\r\n")

	b.WriteString("--" + mimeBoundary + "\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTMLBody)
	b.WriteString("\r\n")

	b.WriteString("--" + mimeBoundary + "\r\n")
	b.WriteString("Content-Type: application/pdf\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n")
	b.WriteString("Content-Disposition: attachment; filename=\"" + msg.AttachmentName + "\"\r\n")
	b.WriteString("\r\n")

	encoded := base64.StdEncoding.EncodeToString(msg.Attachment)
	// RFC 2045 ограничивает длину строки в base64-части
	for i := 0; i < len(encoded); i += 76 {
		end := i + 76
		if end > len(encoded) {
			end = len(encoded)
		}
		b.WriteString(encoded[i:end])
		b.WriteString("\r\n")
	}

	b.WriteString("--" + mimeBoundary + "--\r\n")

	return []byte(b.String())
}

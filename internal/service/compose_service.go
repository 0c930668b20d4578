package service

import (
	"fmt"
	"net/url"
	"quote-web-server/internal/model"
	"strings"
)

// ComposeService : собирает сообщение под конкретный канал доставки.
// Чистая композиция без I/O; байты вложения добавляет оркестратор.
type ComposeService struct{}

func NewComposeService() *ComposeService {
	return &ComposeService{}
}

// Compose : строит ChannelPayload. Если token == nil, сообщение деградирует
// до варианта без ссылки принятия — прямая ссылка на PDF остается.
func (s *ComposeService) Compose(quote *model.Quote, channel model.Channel, recipient model.Recipient, sender model.SenderContext, token *model.QuoteAccessToken, artifactURL string) *model.ChannelPayload {
	client := quote.Client()

	email := recipient.Email
	if email == "" {
		email = client.Email
	}
	phone := recipient.Phone
	if phone == "" {
		phone = client.Phone
	}

	acceptanceLink := ""
	if token != nil {
		acceptanceLink = fmt.Sprintf("%s/public-document/%s", sender.Origin, token.Token)
	}

	subject := fmt.Sprintf("Смета № %s — %s", quote.QuoteNumber, sender.CompanyName)
	bodyText := composeBodyText(quote, client, sender, acceptanceLink, artifactURL)

	payload := &model.ChannelPayload{
		Channel:        channel,
		Subject:        subject,
		BodyText:       bodyText,
		ArtifactURL:    artifactURL,
		AcceptanceLink: acceptanceLink,
		RecipientEmail: email,
		AttachmentName: fmt.Sprintf("smeta-%s.pdf", quote.QuoteNumber),
	}

	switch channel {
	case model.ChannelEmail:
		payload.BodyHTML = composeBodyHTML(quote, client, sender, acceptanceLink, artifactURL)
	case model.ChannelMailto:
		payload.DeepLink = fmt.Sprintf("mailto:%s?subject=%s&body=%s",
			email, url.QueryEscape(subject), url.QueryEscape(bodyText))
	case model.ChannelWhatsApp:
		payload.DeepLink = fmt.Sprintf("https://wa.me/%s?text=%s",
			normalizePhone(phone), url.QueryEscape(bodyText))
	}

	return payload
}

func composeBodyText(quote *model.Quote, client model.QuoteClient, sender model.SenderContext, acceptanceLink string, artifactURL string) string {
	var b strings.Builder

	name := client.Name
	if name == "" {
		name = "клиент"
	}

	fmt.Fprintf(&b, "Здравствуйте, %s!\n\n", name)
	fmt.Fprintf(&b, "Компания %s подготовила для вас смету № %s на сумму %.2f руб.\n", sender.CompanyName, quote.QuoteNumber, quote.Total)
	fmt.Fprintf(&b, "Смета действительна до %s.\n\n", quote.ExpiryDate.Format("02.01.2006"))

	if acceptanceLink != "" {
		fmt.Fprintf(&b, "Посмотреть смету и принять решение: %s\n\n", acceptanceLink)
	} else if artifactURL != "" {
		fmt.Fprintf(&b, "Смета доступна по ссылке: %s\n\n", artifactURL)
	}

	fmt.Fprintf(&b, "С уважением,\n%s", sender.CompanyName)
	if sender.CompanyPhone != "" {
		fmt.Fprintf(&b, "\nТелефон: %s", sender.CompanyPhone)
	}
	if sender.CompanyEmail != "" {
		fmt.Fprintf(&b, "\nEmail: %s", sender.CompanyEmail)
	}

	return b.String()
}

func composeBodyHTML(quote *model.Quote, client model.QuoteClient, sender model.SenderContext, acceptanceLink string, artifactURL string) string {
	var b strings.Builder

	name := client.Name
	if name == "" {
		name = "клиент"
	}

	fmt.Fprintf(&b, "<p>Здравствуйте, %s!</p>", name)
	fmt.Fprintf(&b, "<p>Компания <b>%s</b> подготовила для вас смету № %s на сумму <b>%.2f руб.</b></p>", sender.CompanyName, quote.QuoteNumber, quote.Total)
	fmt.Fprintf(&b, "<p>Смета действительна до %s.</p>", quote.ExpiryDate.Format("02.01.2006"))

	if acceptanceLink != "" {
		fmt.Fprintf(&b, `<p><a href="%s">Посмотреть смету и принять решение</a></p>`, acceptanceLink)
	} else if artifactURL != "" {
		fmt.Fprintf(&b, `<p><a href="%s">Смета (PDF)</a></p>`, artifactURL)
	}

	fmt.Fprintf(&b, "<p>С уважением,<br>%s", sender.CompanyName)
	if sender.CompanyPhone != "" {
		fmt.Fprintf(&b, "<br>Телефон: %s", sender.CompanyPhone)
	}
	if sender.CompanyEmail != "" {
		fmt.Fprintf(&b, "<br>Email: %s", sender.CompanyEmail)
	}
	b.WriteString("</p>")

	return b.String()
}

// normalizePhone : wa.me принимает только цифры международного номера
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

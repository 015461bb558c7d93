// Package notify отправляет письма клиентам через внешний SMTP-ретранслятор.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/wneessen/go-mail"
)

// ErrNotConfigured возвращается, если SMTP-сервер не задан.
var ErrNotConfigured = errors.New("smtp relay is not configured")

// Message описывает письмо клиенту.
type Message struct {
	To      string
	Subject string
	Text    string
	OrderID string
}

// Config содержит параметры SMTP-ретранслятора.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	BaseURL  string
}

// SMTPMailer отправляет письма через SMTP.
type SMTPMailer struct {
	client  *mail.Client
	from    string
	baseURL string
}

// NewSMTPMailer создаёт отправителя писем. Соединение устанавливается при каждой отправке.
func NewSMTPMailer(cfg Config) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, ErrNotConfigured
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}

	return &SMTPMailer{
		client:  client,
		from:    from,
		baseURL: cfg.BaseURL,
	}, nil
}

// Send формирует письмо и передаёт его SMTP-серверу.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	htmlBody, plainBody, err := Render(m.baseURL, msg)
	if err != nil {
		return err
	}

	mm := mail.NewMsg()
	if err := mm.From(m.from); err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if err := mm.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextPlain, plainBody)
	mm.AddAlternativeString(mail.TypeTextHTML, htmlBody)

	if err := m.client.DialAndSendWithContext(ctx, mm); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

var htmlTmpl = template.Must(template.New("email").Parse(`<div style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
{{- if .Link}}
  <p><a href="{{.Link}}">View your order</a></p>
{{- end}}
  <pre style="margin: 0; white-space: pre-wrap; font-size: 14px; line-height: 1.4;">{{.Text}}</pre>
</div>
`))

// OrderLink строит ссылку на страницу заказа. Пустой идентификатор даёт пустую ссылку.
func OrderLink(baseURL, orderID string) string {
	if orderID == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/order/" + url.PathEscape(orderID)
}

// Render возвращает HTML- и текстовую части письма.
func Render(baseURL string, msg Message) (string, string, error) {
	link := OrderLink(baseURL, msg.OrderID)

	var buf bytes.Buffer
	err := htmlTmpl.Execute(&buf, struct {
		Link string
		Text string
	}{
		Link: link,
		Text: msg.Text,
	})
	if err != nil {
		return "", "", fmt.Errorf("render email: %w", err)
	}

	plain := msg.Text
	if link != "" {
		plain = link + "\n\n" + plain
	}

	return buf.String(), plain, nil
}

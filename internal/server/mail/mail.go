// Package mail は購入確認メール。POSTMARK_SERVER_TOKENが無ければログに出すだけ
package mail

import (
	"context"
	"fmt"
	"html"
	"strings"

	"storefront/internal/domain/model"

	"github.com/keighl/postmark"
	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
)

// postmark.Clientの送信部分
type sender interface {
	SendEmail(email postmark.Email) (postmark.EmailResponse, error)
}

type PostmarkMailer struct {
	client sender
	from   string
}

// DI
func NewPostmarkMailer(token, from string) *PostmarkMailer {
	return &PostmarkMailer{client: postmark.NewClient(token, ""), from: from}
}

func (m *PostmarkMailer) SendPurchaseConfirmation(ctx context.Context, to model.User, ticket model.Ticket, lines []model.CartLine) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := Compose(to, ticket, lines)
	_, err := m.client.SendEmail(postmark.Email{
		From:     m.from,
		To:       to.Email,
		Subject:  msg.Subject,
		HtmlBody: msg.HTML,
		TextBody: msg.Text,
		Tag:      "purchase",
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// 送らずにログだけ出す（開発用）
type LogMailer struct {
	logger *log.Logger
}

func NewLogMailer(logger *log.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendPurchaseConfirmation(_ context.Context, to model.User, ticket model.Ticket, lines []model.CartLine) error {
	msg := Compose(to, ticket, lines)
	m.logger.Infof("mail to=%s subject=%q\n%s", to.Email, msg.Subject, msg.Text)
	return nil
}

type Message struct {
	Subject string
	HTML    string
	Text    string
}

// 購入確認の本文
func Compose(to model.User, ticket model.Ticket, lines []model.CartLine) Message {
	var text, body strings.Builder

	fmt.Fprintf(&text, "Hi %s,\n\nThank you for your purchase!\n\n", to.FirstName)
	fmt.Fprintf(&body, "<p>Hi %s,</p><p>Thank you for your purchase!</p><ul>", html.EscapeString(to.FirstName))
	for _, l := range lines {
		sub := money(l.Subtotal())
		fmt.Fprintf(&text, "  %d x %s  %s\n", l.Quantity, l.Product.Title, sub)
		fmt.Fprintf(&body, "<li>%d x %s <strong>%s</strong></li>", l.Quantity, html.EscapeString(l.Product.Title), sub)
	}
	total := money(decimal.NewFromFloat(ticket.Amount))
	fmt.Fprintf(&text, "\nTotal: %s\nTicket: %s\n", total, ticket.Code)
	fmt.Fprintf(&body, "</ul><p>Total: <strong>%s</strong><br>Ticket: <code>%s</code></p>", total, html.EscapeString(ticket.Code))

	return Message{
		Subject: "Purchase confirmation " + ticket.Code,
		HTML:    body.String(),
		Text:    text.String(),
	}
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// EmailChannel sends plain-text mail over unauthenticated SMTP, enough for a
// local relay or Mailpit-style catcher.
type EmailChannel struct {
	addr string
	from string
}

func NewEmailChannel(host, port, from string) *EmailChannel {
	from = strings.TrimSpace(from)
	if from == "" {
		from = "no-reply@styledesk.local"
	}
	return &EmailChannel{
		addr: fmt.Sprintf("%s:%s", strings.TrimSpace(host), strings.TrimSpace(port)),
		from: from,
	}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Send(_ context.Context, recipient, subject, body string) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		c.from, recipient, subject, body)
	if err := smtp.SendMail(c.addr, nil, c.from, []string{recipient}, []byte(msg)); err != nil {
		return &ExternalServiceError{Service: "email", Err: err}
	}
	return nil
}

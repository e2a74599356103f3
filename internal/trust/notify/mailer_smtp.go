package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPMailer delivers notifications over SMTP to a single recipient.
type SMTPMailer struct {
	dialer    *gomail.Dialer
	from      string
	recipient string
}

func NewSMTPMailer(host string, port int, username, password, from, recipient string) *SMTPMailer {
	return &SMTPMailer{
		dialer:    gomail.NewDialer(host, port, username, password),
		from:      from,
		recipient: recipient,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	// gomail has no context support; run the dial in a goroutine so the
	// dispatcher's timeout still bounds the call.
	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

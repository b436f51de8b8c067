// Package notify sends outbound visitor email. Delivery is always
// best-effort from the caller's point of view; nothing here may fail a pass
// issuance.
package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/passdesk/passdesk/internal/config"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{mail.WithPort(m.cfg.Port)}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// PassIssuedBody renders the plain-text notification for a freshly issued
// pass.
func PassIssuedBody(visitorName, code, validFrom, validTo string) string {
	return fmt.Sprintf(
		"Hi %s,\n\nYour visitor pass (%s) has been issued.\nValid: %s - %s\n\nPlease present the QR code at entry.\n",
		visitorName, code, validFrom, validTo,
	)
}

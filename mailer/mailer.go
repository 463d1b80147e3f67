// Package mailer delivers outbound email. The core only needs password-reset
// delivery, expressed as the Mailer interface so the auth service can be
// tested without a mail server.
package mailer

import (
	"context"
	"fmt"
	"log"

	mail "github.com/wneessen/go-mail"

	"github.com/user/innate-go/apperror"
	"github.com/user/innate-go/config"
)

// Mailer sends the password-reset message. Implementations must surface
// delivery failures; the reset-request flow reports them to the caller
// instead of swallowing them.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

const resetSubject = "Password Reset Request"

func resetBody(resetURL string) string {
	return fmt.Sprintf(`To reset your password, visit the following link:
%s

If you did not make this request then please ignore this message.
`, resetURL)
}

// SMTPMailer delivers mail over SMTP.
type SMTPMailer struct {
	client *mail.Client
	from   string
}

// NewSMTPMailer builds an SMTP mailer from config. Authentication is only
// configured when a username is present, so unauthenticated relays (e.g. a
// local test server) work too.
func NewSMTPMailer(cfg *config.MailConfig) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
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
		return nil, apperror.NewConfigError("failed to create SMTP client", err)
	}
	return &SMTPMailer{client: client, from: cfg.From}, nil
}

// SendPasswordReset sends the reset link to the recipient.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return apperror.NewMailError("could not send email", err)
	}
	if err := msg.To(to); err != nil {
		return apperror.NewMailError("could not send email", err)
	}
	msg.Subject(resetSubject)
	msg.SetBodyString(mail.TypeTextPlain, resetBody(resetURL))

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return apperror.NewMailError("could not send email", err)
	}
	return nil
}

// LogMailer writes the reset link to the process log instead of sending it.
// Used when no SMTP host is configured.
type LogMailer struct{}

// SendPasswordReset logs the link.
func (LogMailer) SendPasswordReset(_ context.Context, to, resetURL string) error {
	log.Printf("mailer: SMTP not configured, reset link for %s: %s", to, resetURL)
	return nil
}

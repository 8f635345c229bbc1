// Package email renders alert messages and delivers them over SMTP, the
// Resend API or SendGrid.
package email

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"sellwatch/internal/config"
)

// ErrNotConfigured is returned when no delivery credentials are set
var ErrNotConfigured = errors.New("email delivery not configured")

// Message is a single outgoing email
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender defines the interface for sending emails
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender picks a sender from the configured credentials. Resend wins over
// SendGrid, which wins over SMTP. Without credentials the returned sender
// reports ErrNotConfigured.
func NewSender(cfg config.EmailConfig, logger zerolog.Logger) Sender {
	logger = logger.With().Str("component", "email").Logger()

	switch {
	case cfg.FromAddress == "":
		logger.Warn().Msg("no sender address configured, emails will be skipped")
		return unconfigured{}
	case cfg.ResendAPIKey != "":
		logger.Info().Msg("using resend for email delivery")
		return NewResendSender(cfg.ResendBaseURL, cfg.ResendAPIKey, cfg.FromAddress)
	case cfg.SendGridAPIKey != "":
		logger.Info().Msg("using sendgrid for email delivery")
		return NewSendGridSender(cfg.SendGridAPIKey, cfg.FromAddress)
	case cfg.SMTPHost != "":
		logger.Info().Str("host", cfg.SMTPHost).Int("port", cfg.SMTPPort).Msg("using smtp for email delivery")
		return NewSMTPSender(cfg)
	default:
		logger.Warn().Msg("no email credentials configured, emails will be skipped")
		return unconfigured{}
	}
}

type unconfigured struct{}

func (unconfigured) Send(context.Context, Message) error {
	return ErrNotConfigured
}

// Package push defines browser push delivery. Only a logging sender is
// provided; device delivery is handled elsewhere.
package push

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"sellwatch/internal/models"
)

var (
	// ErrDisabled is returned when the push channel is switched off
	ErrDisabled = errors.New("push delivery disabled")
	// ErrNotRegistered is returned for the pending registration placeholder token
	ErrNotRegistered = errors.New("push token not registered")
)

// Notification is a short push message
type Notification struct {
	Title string
	Body  string
}

// Sender defines the interface for sending push notifications. Senders
// return ErrNotRegistered for models.PendingPushToken.
type Sender interface {
	Send(ctx context.Context, token string, n Notification) error
}

// Render builds the push notification for a trigger
func Render(date string, count int, minPrice float64) Notification {
	return Notification{
		Title: "Sell price alert",
		Body:  fmt.Sprintf("%d intervals on %s at or above %s EUR/MWh", count, date, models.FormatPrice(minPrice)),
	}
}

// LogSender writes notifications to the log instead of a device
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a logging push sender
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("component", "push").Logger()}
}

// Send implements Sender
func (s *LogSender) Send(ctx context.Context, token string, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if token == models.PendingPushToken {
		return ErrNotRegistered
	}
	s.logger.Info().
		Str("token", mask(token)).
		Str("title", n.Title).
		Str("body", n.Body).
		Msg("push notification")
	return nil
}

// Disabled rejects every notification with ErrDisabled
type Disabled struct{}

// Send implements Sender
func (Disabled) Send(context.Context, string, Notification) error {
	return ErrDisabled
}

func mask(token string) string {
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "***" + token[len(token)-4:]
}

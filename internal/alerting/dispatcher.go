package alerting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sellwatch/internal/email"
	"sellwatch/internal/ledger"
	"sellwatch/internal/models"
	"sellwatch/internal/push"
	"sellwatch/internal/repository"
)

// Delivery channels
const (
	ChannelEmail = "email"
	ChannelPush  = "push"
)

// DefaultOperationTimeout bounds one lookup or one channel delivery
const DefaultOperationTimeout = 30 * time.Second

// DeliveryError is a failed delivery on one channel of one subscription
type DeliveryError struct {
	SubscriptionID uuid.UUID
	Channel        string
	Err            error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("subscription %s (%s): %v", e.SubscriptionID, e.Channel, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// DispatchResult counts what a dispatch run did
type DispatchResult struct {
	Processed  int
	SentEmails int
	SentPushes int
	Errors     []error
}

// LinkSigner builds unsubscribe links for alert emails
type LinkSigner interface {
	UnsubscribeURL(subscriptionID uuid.UUID) (string, error)
}

// Dispatcher sends notifications for alert triggers
type Dispatcher struct {
	alerts repository.AlertRepository
	email  email.Sender
	push   push.Sender
	ledger ledger.Ledger
	links  LinkSigner
	logger zerolog.Logger

	timeout time.Duration
}

// NewDispatcher creates a new dispatcher. A nil ledger disables deduplication.
func NewDispatcher(alerts repository.AlertRepository, emailSender email.Sender, pushSender push.Sender, l ledger.Ledger, links LinkSigner, logger zerolog.Logger) *Dispatcher {
	if l == nil {
		l = ledger.Noop{}
	}
	return &Dispatcher{
		alerts:  alerts,
		email:   emailSender,
		push:    pushSender,
		ledger:  l,
		links:   links,
		logger:  logger.With().Str("component", "dispatcher").Logger(),
		timeout: DefaultOperationTimeout,
	}
}

// Dispatch delivers every trigger. Each lookup and each channel delivery
// runs under its own timeout derived from ctx. Failures are collected per
// channel and never stop the batch; only cancelling ctx does.
func (d *Dispatcher) Dispatch(ctx context.Context, date string, triggers []models.AlertTrigger) DispatchResult {
	var result DispatchResult

	for _, trigger := range triggers {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, fmt.Errorf("dispatch interrupted: %w", ctx.Err()))
			return result
		}

		sub, err := d.lookup(ctx, trigger.SubscriptionID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				result.Errors = append(result.Errors, &DeliveryError{SubscriptionID: trigger.SubscriptionID, Channel: "lookup", Err: err})
			}
			continue
		}
		if !sub.IsActive {
			continue
		}
		result.Processed++

		if sub.HasEmail() {
			sent, err := d.sendEmail(ctx, sub, date, trigger.MatchingIntervals)
			if err != nil {
				result.Errors = append(result.Errors, err)
			} else if sent {
				result.SentEmails++
			}
		}

		if sub.HasPush() {
			sent, err := d.sendPush(ctx, sub, date, len(trigger.MatchingIntervals))
			if err != nil {
				result.Errors = append(result.Errors, err)
			} else if sent {
				result.SentPushes++
			}
		}
	}

	return result
}

func (d *Dispatcher) lookup(ctx context.Context, id uuid.UUID) (*models.AlertSubscription, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.alerts.GetByID(ctx, id)
}

func (d *Dispatcher) sendEmail(ctx context.Context, sub *models.AlertSubscription, date string, intervals []models.PriceInterval) (bool, error) {
	logger := d.logger.With().Str("subscription_id", sub.ID.String()).Str("channel", ChannelEmail).Logger()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if d.alreadyDelivered(ctx, logger, sub.ID, date, ChannelEmail) {
		return false, nil
	}

	from, to := sub.Window()
	data := email.AlertData{
		Date:       date,
		MinPrice:   sub.MinPrice,
		WindowFrom: from,
		WindowTo:   to,
		Intervals:  intervals,
	}
	if d.links != nil {
		link, err := d.links.UnsubscribeURL(sub.ID)
		if err != nil {
			logger.Warn().Err(err).Msg("sending alert without unsubscribe link")
		}
		data.UnsubscribeURL = link
	}

	msg, err := email.RenderAlert(*sub.Email, data)
	if err != nil {
		return false, &DeliveryError{SubscriptionID: sub.ID, Channel: ChannelEmail, Err: err}
	}

	if err := d.email.Send(ctx, msg); err != nil {
		if errors.Is(err, email.ErrNotConfigured) {
			logger.Warn().Msg("email delivery not configured, skipping")
			return false, nil
		}
		logger.Error().Err(err).Msg("failed to send alert email")
		return false, &DeliveryError{SubscriptionID: sub.ID, Channel: ChannelEmail, Err: err}
	}

	d.record(ctx, logger, sub.ID, date, ChannelEmail)
	logger.Info().Int("intervals", len(intervals)).Msg("alert email sent")
	return true, nil
}

func (d *Dispatcher) sendPush(ctx context.Context, sub *models.AlertSubscription, date string, count int) (bool, error) {
	logger := d.logger.With().Str("subscription_id", sub.ID.String()).Str("channel", ChannelPush).Logger()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if d.alreadyDelivered(ctx, logger, sub.ID, date, ChannelPush) {
		return false, nil
	}

	if err := d.push.Send(ctx, *sub.PushToken, push.Render(date, count, sub.MinPrice)); err != nil {
		if errors.Is(err, push.ErrDisabled) || errors.Is(err, push.ErrNotRegistered) {
			logger.Debug().Err(err).Msg("push delivery skipped")
			return false, nil
		}
		logger.Error().Err(err).Msg("failed to send push notification")
		return false, &DeliveryError{SubscriptionID: sub.ID, Channel: ChannelPush, Err: err}
	}

	d.record(ctx, logger, sub.ID, date, ChannelPush)
	return true, nil
}

func (d *Dispatcher) alreadyDelivered(ctx context.Context, logger zerolog.Logger, id uuid.UUID, date, channel string) bool {
	delivered, err := d.ledger.Delivered(ctx, id.String(), date, channel)
	if err != nil {
		logger.Warn().Err(err).Msg("delivery ledger unavailable")
		return false
	}
	if delivered {
		logger.Debug().Msg("already delivered, skipping")
	}
	return delivered
}

func (d *Dispatcher) record(ctx context.Context, logger zerolog.Logger, id uuid.UUID, date, channel string) {
	if err := d.ledger.Record(ctx, id.String(), date, channel); err != nil {
		logger.Warn().Err(err).Msg("failed to record delivery")
	}
}

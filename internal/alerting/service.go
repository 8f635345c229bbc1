package alerting

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"sellwatch/internal/models"
)

// Service runs the alert evaluation job
type Service struct {
	matcher    *Matcher
	dispatcher *Dispatcher
	timeout    time.Duration
	logger     zerolog.Logger
}

// NewService creates the alert evaluation job. timeout bounds matching of
// one date and each lookup or delivery of the dispatcher, never the batch.
func NewService(matcher *Matcher, dispatcher *Dispatcher, timeout time.Duration, logger zerolog.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultOperationTimeout
	}
	dispatcher.timeout = timeout
	return &Service{
		matcher:    matcher,
		dispatcher: dispatcher,
		timeout:    timeout,
		logger:     logger.With().Str("component", "alerting").Logger(),
	}
}

// Run evaluates every date in order. It fails only when subscriptions or
// prices cannot be loaded, which is an orchestration error.
func (s *Service) Run(ctx context.Context, dates []string) ([]models.EvaluateResult, error) {
	results := make([]models.EvaluateResult, 0, len(dates))
	for _, date := range dates {
		result, err := s.EvaluateDate(ctx, date)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// EvaluateDate matches and dispatches the alerts of one date
func (s *Service) EvaluateDate(ctx context.Context, date string) (models.EvaluateResult, error) {
	result := models.EvaluateResult{Date: date, Errors: []string{}}
	logger := s.logger.With().Str("date", date).Logger()

	matchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	triggers, err := s.matcher.Match(matchCtx, date)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			result.Errors = append(result.Errors, "timed out: "+err.Error())
			logger.Error().Err(err).Msg("alert matching timed out")
			return result, nil
		}
		logger.Error().Err(err).Msg("failed to match alerts")
		return result, err
	}
	result.TriggeredAlerts = len(triggers)

	dispatched := s.dispatcher.Dispatch(ctx, date, triggers)
	result.SentEmails = dispatched.SentEmails
	result.SentPushes = dispatched.SentPushes
	for _, e := range dispatched.Errors {
		result.Errors = append(result.Errors, e.Error())
	}

	logger.Info().
		Int("triggered", result.TriggeredAlerts).
		Int("emails", result.SentEmails).
		Int("pushes", result.SentPushes).
		Int("errors", len(result.Errors)).
		Msg("evaluated alerts")
	return result, nil
}

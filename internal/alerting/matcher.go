// Package alerting evaluates alert subscriptions against a day's prices and
// delivers the resulting notifications.
package alerting

import (
	"context"
	"fmt"

	"sellwatch/internal/models"
	"sellwatch/internal/repository"
	"sellwatch/internal/timeutil"
)

// Matcher pairs active subscriptions with the intervals they care about
type Matcher struct {
	alerts repository.AlertRepository
	prices repository.PriceIntervalRepository
}

// NewMatcher creates a new matcher
func NewMatcher(alerts repository.AlertRepository, prices repository.PriceIntervalRepository) *Matcher {
	return &Matcher{alerts: alerts, prices: prices}
}

// Match returns one trigger per active subscription with at least one
// matching interval on date, in subscription order.
func (m *Matcher) Match(ctx context.Context, date string) ([]models.AlertTrigger, error) {
	subs, err := m.alerts.ListActive(ctx, repository.AlertFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}
	intervals, err := m.prices.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load prices for %s: %w", date, err)
	}
	return MatchIntervals(subs, intervals, date), nil
}

// MatchIntervals filters intervals by each subscription's threshold and
// time window. A price equal to the threshold matches.
func MatchIntervals(subs []models.AlertSubscription, intervals []models.PriceInterval, date string) []models.AlertTrigger {
	triggers := make([]models.AlertTrigger, 0)
	for i := range subs {
		sub := &subs[i]
		from, to := sub.Window()

		var matching []models.PriceInterval
		for _, iv := range intervals {
			if iv.PriceEurMwh < sub.MinPrice {
				continue
			}
			if !timeutil.InWindow(iv.StartTime, from, to) {
				continue
			}
			matching = append(matching, iv)
		}
		if len(matching) == 0 {
			continue
		}
		triggers = append(triggers, models.AlertTrigger{
			SubscriptionID:    sub.ID,
			Date:              date,
			MatchingIntervals: matching,
		})
	}
	return triggers
}

package app

import (
	"context"
	"time"

	"sellwatch/internal/models"
	"sellwatch/internal/timeutil"
)

// Dates returns the requested date, or today and tomorrow in the market
// time zone when date is empty.
func (a *App) Dates(date string) ([]string, error) {
	if date != "" {
		if err := timeutil.ValidateDate(date); err != nil {
			return nil, err
		}
		return []string{date}, nil
	}
	return timeutil.UpcomingDates(time.Now(), a.Config.Location), nil
}

// Ingest runs the ingestion job once
func (a *App) Ingest(ctx context.Context, dates []string) ([]models.IngestResult, error) {
	svc, err := a.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer svc.Close()

	return svc.Ingest.Run(ctx, dates), nil
}

// Evaluate runs the alert evaluation job once
func (a *App) Evaluate(ctx context.Context, dates []string) ([]models.EvaluateResult, error) {
	svc, err := a.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer svc.Close()

	return svc.Alerting.Run(ctx, dates)
}

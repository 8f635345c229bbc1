package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"sellwatch/internal/api/routes"
	"sellwatch/internal/api/server"
	"sellwatch/internal/scheduler"
	"sellwatch/internal/timeutil"
	"sellwatch/internal/validation"
)

// Serve runs the HTTP API and, when enabled, the job scheduler until
// SIGINT or SIGTERM.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc, err := a.Open(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	// Initialize validators
	validation.Initialize()

	if a.Config.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := routes.SetupRoutes(ctx, a.Config, routes.Dependencies{
		DB:        svc.DB,
		Prices:    svc.Prices,
		Alerts:    svc.Alerts,
		Ranking:   svc.Ranking,
		Tokens:    svc.Tokens,
		Ingester:  svc.Ingest,
		Evaluator: svc.Alerting,
		Logger:    a.Logger,
	})

	schedDone := make(chan struct{})
	if a.Config.Scheduler.Enabled {
		sched := a.newScheduler(svc)
		go func() {
			defer close(schedDone)
			if err := sched.Run(ctx); err != nil {
				a.Logger.Error().Err(err).Msg("scheduler failed")
			}
		}()
	} else {
		close(schedDone)
		a.Logger.Info().Msg("scheduler disabled, jobs run only when triggered")
	}

	err = server.New(a.Config, router, a.Logger).Run(ctx)
	cancel()
	<-schedDone

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *App) newScheduler(svc *Services) *scheduler.Scheduler {
	cfg := a.Config
	sched := scheduler.New(cfg.Location, a.Logger)

	sched.Add(scheduler.Job{
		Name:     "ingest",
		Schedule: cfg.Scheduler.IngestSchedule,
		Run: func(ctx context.Context) {
			dates := timeutil.UpcomingDates(time.Now(), cfg.Location)
			for _, r := range svc.Ingest.Run(ctx, dates) {
				if r.Error != "" {
					a.Logger.Warn().Str("date", r.Date).Str("error", r.Error).Msg("scheduled ingestion incomplete")
				}
			}
		},
	})
	sched.Add(scheduler.Job{
		Name:     "alerts",
		Schedule: cfg.Scheduler.AlertsSchedule,
		Run: func(ctx context.Context) {
			dates := timeutil.UpcomingDates(time.Now(), cfg.Location)
			if _, err := svc.Alerting.Run(ctx, dates); err != nil {
				a.Logger.Error().Err(err).Msg("scheduled alert evaluation failed")
			}
		},
	})

	return sched
}

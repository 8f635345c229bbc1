// Package app wires configuration, storage and services together for the
// API server and the CLI commands.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"sellwatch/internal/alerting"
	"sellwatch/internal/auth"
	"sellwatch/internal/config"
	"sellwatch/internal/database"
	"sellwatch/internal/email"
	"sellwatch/internal/ingest"
	"sellwatch/internal/ledger"
	"sellwatch/internal/parser"
	"sellwatch/internal/provider"
	"sellwatch/internal/provider/ibex"
	"sellwatch/internal/push"
	"sellwatch/internal/ranking"
	"sellwatch/internal/repository"
	"sellwatch/internal/repository/postgres"
	"sellwatch/internal/repository/sqlite"
)

// App aggregates configuration and shared dependencies
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger}
}

// Services holds everything built from the configuration
type Services struct {
	DB       *sql.DB
	Prices   repository.PriceIntervalRepository
	Alerts   repository.AlertRepository
	Ingest   *ingest.Service
	Alerting *alerting.Service
	Ranking  *ranking.Service
	Tokens   *auth.Service

	closers []io.Closer
}

// Close releases the database and delivery connections
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open connects to storage, migrates it and builds the services
func (a *App) Open(ctx context.Context) (*Services, error) {
	cfg := a.Config

	db, err := database.SetupDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}
	svc := &Services{DB: db, closers: []io.Closer{db}}

	switch cfg.Database.Driver {
	case config.DriverSQLite:
		svc.Prices = sqlite.NewPriceIntervalRepository(db, a.Logger)
		svc.Alerts = sqlite.NewAlertRepository(db)
	default:
		svc.Prices = postgres.NewPriceIntervalRepository(db, a.Logger)
		svc.Alerts = postgres.NewAlertRepository(db)
	}

	feed := ibex.NewProvider(provider.Config{
		URL:         cfg.Feed.URL,
		Timeout:     cfg.Feed.Timeout,
		Placeholder: cfg.Feed.Placeholder,
		UserAgent:   cfg.Feed.UserAgent,
	}, a.Logger)
	svc.Ingest = ingest.New(feed, parser.New(a.Logger), svc.Prices, ingest.Options{
		FetchTimeout: cfg.Feed.Timeout,
		QueryTimeout: cfg.QueryTimeout,
	}, a.Logger)

	svc.Ranking = ranking.NewService(svc.Prices)
	svc.Tokens = auth.NewService(cfg.UnsubscribeSecret, cfg.API.AppURL)

	emailSender := email.NewSender(cfg.Email, a.Logger)
	if c, ok := emailSender.(io.Closer); ok {
		svc.closers = append(svc.closers, c)
	}

	var pushSender push.Sender = push.Disabled{}
	if cfg.Push.Enabled {
		pushSender = push.NewLogSender(a.Logger)
	}

	svc.Alerting = alerting.NewService(
		alerting.NewMatcher(svc.Alerts, svc.Prices),
		alerting.NewDispatcher(svc.Alerts, emailSender, pushSender, a.openLedger(ctx, svc), svc.Tokens, a.Logger),
		cfg.QueryTimeout+cfg.Feed.Timeout,
		a.Logger,
	)

	return svc, nil
}

// openLedger connects the Redis delivery ledger. Without Redis, or when it is
// unreachable, repeat deliveries are not suppressed.
func (a *App) openLedger(ctx context.Context, svc *Services) ledger.Ledger {
	cfg := a.Config.Redis
	if cfg.Addr == "" {
		return ledger.Noop{}
	}

	l, err := ledger.NewRedisLedger(ctx, ledger.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		TTL:      cfg.TTL,
	})
	if err != nil {
		a.Logger.Warn().Err(err).Msg("delivery ledger unavailable, repeat notifications will not be suppressed")
		return ledger.Noop{}
	}

	svc.closers = append(svc.closers, l)
	a.Logger.Info().Str("addr", cfg.Addr).Dur("ttl", cfg.TTL).Msg("delivery ledger connected")
	return l
}

// Migrate brings the configured database schema up to date
func (a *App) Migrate(ctx context.Context) error {
	db, err := database.SetupDatabase(a.Config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to reach database: %w", err)
	}
	a.Logger.Info().Str("driver", a.Config.Database.Driver).Msg("database schema is up to date")
	return nil
}

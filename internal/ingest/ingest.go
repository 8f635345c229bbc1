// Package ingest runs the price ingestion job: fetch, parse and store one
// day at a time.
package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"sellwatch/internal/models"
	"sellwatch/internal/parser"
	"sellwatch/internal/provider"
	"sellwatch/internal/repository"
)

// Options tune the ingestion job
type Options struct {
	// FetchTimeout bounds fetching and parsing of one date
	FetchTimeout time.Duration
	// QueryTimeout bounds storing one date
	QueryTimeout time.Duration
}

// Service orchestrates provider, parser and price store
type Service struct {
	provider provider.Provider
	parser   *parser.Parser
	prices   repository.PriceIntervalRepository
	opts     Options
	logger   zerolog.Logger
}

// New creates an ingestion service
func New(p provider.Provider, prs *parser.Parser, prices repository.PriceIntervalRepository, opts Options, logger zerolog.Logger) *Service {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 15 * time.Second
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = 10 * time.Second
	}
	return &Service{
		provider: p,
		parser:   prs,
		prices:   prices,
		opts:     opts,
		logger:   logger.With().Str("component", "ingest").Logger(),
	}
}

// Run ingests every date in order. A failing date is reported in its
// result and never stops the others.
func (s *Service) Run(ctx context.Context, dates []string) []models.IngestResult {
	results := make([]models.IngestResult, 0, len(dates))
	for _, date := range dates {
		results = append(results, s.IngestDate(ctx, date))
	}
	return results
}

// IngestDate fetches, parses and upserts the prices of one date
func (s *Service) IngestDate(ctx context.Context, date string) models.IngestResult {
	result := models.IngestResult{Date: date}
	logger := s.logger.With().Str("date", date).Logger()

	fetchCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	raw, err := s.provider.Fetch(fetchCtx, date)
	cancel()
	if err != nil {
		result.Error = describe(err)
		logger.Error().Err(err).Str("provider", s.provider.Name()).Msg("failed to fetch prices")
		return result
	}

	records := s.parser.Parse(raw, date)
	result.Fetched = len(records)
	if len(records) == 0 {
		logger.Warn().Str("kind", string(raw.Kind())).Msg("no price records parsed")
		return result
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	upserted, err := s.prices.Upsert(storeCtx, records)
	result.Upserted = upserted
	if err != nil {
		result.Error = describe(err)
		logger.Error().Err(err).Int("upserted", upserted).Msg("failed to store prices")
		return result
	}

	logger.Info().Int("fetched", result.Fetched).Int("upserted", upserted).Msg("ingested prices")
	return result
}

func describe(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out: " + err.Error()
	case errors.Is(err, context.Canceled):
		return "cancelled: " + err.Error()
	default:
		return err.Error()
	}
}

package ingest_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellwatch/internal/ingest"
	"sellwatch/internal/parser"
	"sellwatch/internal/provider"
	"sellwatch/internal/repository/sqlite"
	"sellwatch/internal/testutil/db"
)

type stubProvider struct {
	payloads map[string]parser.RawPayload
	errs     map[string]error
	block    bool
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Fetch(ctx context.Context, date string) (parser.RawPayload, error) {
	if p.block {
		<-ctx.Done()
		return nil, &provider.FetchError{Err: ctx.Err()}
	}
	if err, ok := p.errs[date]; ok {
		return nil, err
	}
	return p.payloads[date], nil
}

func TestRun_PerDateIsolation(t *testing.T) {
	prices := sqlite.NewPriceIntervalRepository(db.SetupSQLiteTestDB(t), zerolog.Nop())
	stub := &stubProvider{
		payloads: map[string]parser.RawPayload{
			"2025-06-01": parser.CSVPayload{Text: "time,price\n00:00,10\n00:15,12\n"},
		},
		errs: map[string]error{
			"2025-06-02": &provider.FetchError{StatusCode: http.StatusBadGateway, Err: errors.New("bad gateway")},
		},
	}

	svc := ingest.New(stub, parser.New(zerolog.Nop()), prices, ingest.Options{}, zerolog.Nop())
	results := svc.Run(context.Background(), []string{"2025-06-01", "2025-06-02"})

	require.Len(t, results, 2)
	assert.Equal(t, "2025-06-01", results[0].Date)
	assert.Equal(t, 2, results[0].Fetched)
	assert.Equal(t, 2, results[0].Upserted)
	assert.Empty(t, results[0].Error)

	assert.Equal(t, "2025-06-02", results[1].Date)
	assert.Zero(t, results[1].Fetched)
	assert.Contains(t, results[1].Error, "502")

	stored, err := prices.ListByDate(context.Background(), "2025-06-01")
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestIngestDate_EmptyTableIsNotAnError(t *testing.T) {
	prices := sqlite.NewPriceIntervalRepository(db.SetupSQLiteTestDB(t), zerolog.Nop())
	stub := &stubProvider{payloads: map[string]parser.RawPayload{
		"2025-06-01": parser.HTMLPayload{Document: "<table></table>"},
	}}

	svc := ingest.New(stub, parser.New(zerolog.Nop()), prices, ingest.Options{}, zerolog.Nop())
	result := svc.IngestDate(context.Background(), "2025-06-01")

	assert.Zero(t, result.Fetched)
	assert.Zero(t, result.Upserted)
	assert.Empty(t, result.Error)
}

func TestIngestDate_MissingConfiguration(t *testing.T) {
	prices := sqlite.NewPriceIntervalRepository(db.SetupSQLiteTestDB(t), zerolog.Nop())
	stub := &stubProvider{errs: map[string]error{
		"2025-06-01": &provider.ConfigurationError{Setting: "OFFICIAL_PRICE_SOURCE_URL"},
	}}

	svc := ingest.New(stub, parser.New(zerolog.Nop()), prices, ingest.Options{}, zerolog.Nop())
	result := svc.IngestDate(context.Background(), "2025-06-01")

	assert.Equal(t, "OFFICIAL_PRICE_SOURCE_URL is not configured", result.Error)
}

func TestIngestDate_Timeout(t *testing.T) {
	prices := sqlite.NewPriceIntervalRepository(db.SetupSQLiteTestDB(t), zerolog.Nop())
	stub := &stubProvider{block: true}

	svc := ingest.New(stub, parser.New(zerolog.Nop()), prices, ingest.Options{FetchTimeout: 20 * time.Millisecond}, zerolog.Nop())
	results := svc.Run(context.Background(), []string{"2025-06-01", "2025-06-02"})

	require.Len(t, results, 2)
	for _, r := range results {
		assert.Zero(t, r.Fetched)
		assert.Contains(t, r.Error, "timed out")
	}
}

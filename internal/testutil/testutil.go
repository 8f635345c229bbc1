// Package testutil provides utilities for testing
package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"sellwatch/internal/config"
	"sellwatch/internal/models"
	"sellwatch/internal/repository"
	"sellwatch/internal/repository/sqlite"
	"sellwatch/internal/testutil/db"
	"sellwatch/internal/validation"
)

// LoadTestConfig loads the test configuration
func LoadTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return db.LoadTestConfig(t)
}

// TestContext holds common test dependencies
type TestContext struct {
	T      *testing.T
	DB     *sql.DB
	Config *config.Config
	Logger zerolog.Logger
	Prices repository.PriceIntervalRepository
	Alerts repository.AlertRepository
}

// NewTestContext creates a new test context backed by in-memory SQLite
func NewTestContext(t *testing.T) *TestContext {
	t.Helper()

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)

	// Initialize validators
	validation.Initialize()

	cfg := db.LoadTestConfig(t)
	conn := db.SetupSQLiteTestDB(t)
	logger := zerolog.Nop()

	return &TestContext{
		T:      t,
		DB:     conn,
		Config: cfg,
		Logger: logger,
		Prices: sqlite.NewPriceIntervalRepository(conn, logger),
		Alerts: sqlite.NewAlertRepository(conn),
	}
}

// SeedPrices stores the given intervals
func (tc *TestContext) SeedPrices(records ...models.PriceInterval) {
	tc.T.Helper()

	n, err := tc.Prices.Upsert(context.Background(), records)
	require.NoError(tc.T, err)
	require.Equal(tc.T, len(records), n)
}

// CreateTestAlert creates an active subscription
func (tc *TestContext) CreateTestAlert(email *string, pushToken *string, minPrice float64) *models.AlertSubscription {
	tc.T.Helper()

	alert := &models.AlertSubscription{
		Email:     email,
		PushToken: pushToken,
		MinPrice:  minPrice,
	}
	require.NoError(tc.T, tc.Alerts.Create(context.Background(), alert))
	return alert
}

// PriceInterval builds a 15 minute interval for tests
func PriceInterval(date, start, end string, price float64) models.PriceInterval {
	return models.PriceInterval{
		Date:            date,
		StartTime:       start,
		EndTime:         end,
		IntervalMinutes: 15,
		PriceEurMwh:     price,
	}
}

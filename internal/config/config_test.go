package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestLoadFromEnv tests loading configuration from environment variables
func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/test.db")
	t.Setenv("OFFICIAL_PRICE_SOURCE_URL", "https://example.test/prices?date={date}")
	t.Setenv("FEED_TIMEOUT", "3s")
	t.Setenv("APP_URL", "https://sellwatch.test/")
	t.Setenv("RESEND_FROM_EMAIL", "alerts@sellwatch.test")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg := &Config{}
	err := cfg.LoadFromEnv()
	require.NoError(t, err)

	// Verify configuration values
	require.Equal(t, "8080", cfg.API.Port)
	require.Equal(t, "https://sellwatch.test", cfg.API.AppURL)
	require.Equal(t, DriverSQLite, cfg.Database.Driver)
	require.Equal(t, "/tmp/test.db", cfg.Database.SQLitePath)
	require.Equal(t, "https://example.test/prices?date={date}", cfg.Feed.URL)
	require.Equal(t, 3*time.Second, cfg.Feed.Timeout)
	require.Equal(t, "alerts@sellwatch.test", cfg.Email.FromAddress)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.Equal(t, 48*time.Hour, cfg.Redis.TTL)
	require.Equal(t, "Europe/Sofia", cfg.MarketTimezone)
	require.NotNil(t, cfg.Location)
	require.True(t, cfg.Scheduler.Enabled)
	require.True(t, cfg.Push.Enabled)
	require.Equal(t, 1000, cfg.RateLimit.Requests)
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "Unknown Driver", env: map[string]string{"DB_DRIVER": "mysql"}},
		{name: "Unknown Timezone", env: map[string]string{"MARKET_TIMEZONE": "Mars/Olympus"}},
		{name: "Bad Ingest Schedule", env: map[string]string{"INGEST_SCHEDULE": "every day"}},
		{name: "Bad Alerts Schedule", env: map[string]string{"ALERTS_SCHEDULE": "61 * * * *"}},
		{name: "Zero Rate Limit", env: map[string]string{"RATE_LIMIT_REQUESTS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg := &Config{}
			require.Error(t, cfg.LoadFromEnv())
		})
	}
}

func TestLoadFromEnv_SchedulerDisabledSkipsCronValidation(t *testing.T) {
	t.Setenv("SCHEDULER_ENABLED", "false")
	t.Setenv("INGEST_SCHEDULE", "not a schedule")

	cfg := &Config{}
	require.NoError(t, cfg.LoadFromEnv())
	require.False(t, cfg.Scheduler.Enabled)
}

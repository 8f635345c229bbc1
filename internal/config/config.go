package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
)

const (
	// DriverPostgres selects the PostgreSQL store
	DriverPostgres = "postgres"
	// DriverSQLite selects the embedded SQLite store
	DriverSQLite = "sqlite"
)

// Config represents the application configuration
type Config struct {
	// API contains API server configuration
	API APIConfig
	// Database contains database configuration
	Database DatabaseConfig
	// Feed contains upstream price feed configuration
	Feed FeedConfig
	// Email contains email delivery configuration
	Email EmailConfig
	// Push contains push delivery configuration
	Push PushConfig
	// Redis contains the delivery ledger configuration
	Redis RedisConfig
	// Scheduler contains cron job configuration
	Scheduler SchedulerConfig
	// Logging contains logger configuration
	Logging LoggingConfig

	// Rate Limiting Configuration
	RateLimit struct {
		Requests int // Number of requests allowed per window
		Window   int // Time window in seconds
	}

	// MarketTimezone is used to compute today and tomorrow for the jobs
	MarketTimezone string
	// Location is MarketTimezone resolved by LoadFromEnv
	Location *time.Location `json:"-"`
	// QueryTimeout bounds every database operation of a job
	QueryTimeout time.Duration
	// CronSecret guards the job endpoints when set
	CronSecret string
	// UnsubscribeSecret signs the unsubscribe links sent in alert emails
	UnsubscribeSecret string
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	// Driver is either "postgres" or "sqlite"
	Driver string
	// Host is the database server hostname
	Host string
	// Port is the database server port
	Port int
	// User is the database username
	User string
	// Password is the database password
	Password string
	// DBName is the database name
	DBName string
	// SSLMode is the SSL mode for the database connection
	SSLMode string
	// MigrationsPath is the path to database migrations
	MigrationsPath string
	// SQLitePath is the database file used by the sqlite driver
	SQLitePath string
}

// APIConfig contains API server settings
type APIConfig struct {
	// Port is the server port to listen on
	Port string
	// AppURL is the public base URL used in links
	AppURL string
}

// FeedConfig contains upstream price feed settings
type FeedConfig struct {
	// URL is the feed URL, optionally containing a {date} placeholder
	URL string
	// Timeout bounds a single upstream fetch
	Timeout time.Duration
	// Placeholder enables synthesized prices when URL is empty
	Placeholder bool
	// UserAgent is sent with every upstream request
	UserAgent string
}

// EmailConfig contains email service settings
type EmailConfig struct {
	// SMTPHost is the SMTP server hostname
	SMTPHost string
	// SMTPPort is the SMTP server port
	SMTPPort int
	// SMTPUsername is the SMTP authentication username
	SMTPUsername string
	// SMTPPassword is the SMTP authentication password
	SMTPPassword string
	// FromAddress is the email address used as sender
	FromAddress string
	// ResendAPIKey enables delivery through the Resend API
	ResendAPIKey string
	// ResendBaseURL overrides the Resend API endpoint
	ResendBaseURL string
	// SendGridAPIKey enables delivery through SendGrid
	SendGridAPIKey string
}

// PushConfig contains push notification settings
type PushConfig struct {
	// Enabled turns the push channel on
	Enabled bool
}

// RedisConfig contains the delivery ledger connection settings
type RedisConfig struct {
	// Addr is host:port of the Redis server, empty disables the ledger
	Addr string
	// Password is the Redis password
	Password string
	// DB is the Redis database number
	DB int
	// TTL is how long a delivery is remembered
	TTL time.Duration
}

// SchedulerConfig contains cron settings for the background jobs
type SchedulerConfig struct {
	// Enabled starts the in-process scheduler
	Enabled bool
	// IngestSchedule is the cron expression of the ingestion job
	IngestSchedule string
	// AlertsSchedule is the cron expression of the alerting job
	AlertsSchedule string
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	// Level is a zerolog level name
	Level string
	// Format is "json" or "console"
	Format string
}

// LoadFromEnv retrieves configuration from environment variables
func (c *Config) LoadFromEnv() error {
	c.API = APIConfig{
		Port:   getEnvOrDefault("API_PORT", "8080"),
		AppURL: strings.TrimRight(os.Getenv("APP_URL"), "/"),
	}
	c.Database = DatabaseConfig{
		Driver:         strings.ToLower(getEnvOrDefault("DB_DRIVER", DriverPostgres)),
		Host:           getEnvOrDefault("DB_HOST", "localhost"),
		Port:           getEnvAsInt("DB_PORT", 5432),
		User:           getEnvOrDefault("DB_USER", "postgres"),
		Password:       getEnvOrDefault("DB_PASSWORD", "postgres"),
		DBName:         getEnvOrDefault("DB_NAME", "sellwatch"),
		SSLMode:        getEnvOrDefault("DB_SSL_MODE", "disable"),
		MigrationsPath: getEnvOrDefault("DB_MIGRATIONS_PATH", "migrations"),
		SQLitePath:     getEnvOrDefault("SQLITE_PATH", "./data/sellwatch.db"),
	}
	c.Feed = FeedConfig{
		URL:         os.Getenv("OFFICIAL_PRICE_SOURCE_URL"),
		Timeout:     getEnvAsDuration("FEED_TIMEOUT", 15*time.Second),
		Placeholder: getEnvAsBool("FEED_PLACEHOLDER", false),
		UserAgent:   getEnvOrDefault("FEED_USER_AGENT", "Mozilla/5.0 (compatible; SellWatch/1.0)"),
	}
	c.Email = EmailConfig{
		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPPort:       getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername:   os.Getenv("SMTP_USERNAME"),
		SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
		FromAddress:    getEnvOrDefault("SMTP_FROM", os.Getenv("RESEND_FROM_EMAIL")),
		ResendAPIKey:   os.Getenv("RESEND_API_KEY"),
		ResendBaseURL:  getEnvOrDefault("RESEND_BASE_URL", "https://api.resend.com"),
		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
	}
	c.Push = PushConfig{
		Enabled: getEnvAsBool("PUSH_ENABLED", true),
	}
	c.Redis = RedisConfig{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       getEnvAsInt("REDIS_DB", 0),
		TTL:      getEnvAsDuration("LEDGER_TTL", 48*time.Hour),
	}
	c.Scheduler = SchedulerConfig{
		Enabled:        getEnvAsBool("SCHEDULER_ENABLED", true),
		IngestSchedule: getEnvOrDefault("INGEST_SCHEDULE", "15 13 * * *"),
		AlertsSchedule: getEnvOrDefault("ALERTS_SCHEDULE", "30 13 * * *"),
	}
	c.Logging = LoggingConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Format: getEnvOrDefault("LOG_FORMAT", "json"),
	}

	// Load rate limit configuration
	c.RateLimit.Requests = getEnvAsInt("RATE_LIMIT_REQUESTS", 1000)
	c.RateLimit.Window = getEnvAsInt("RATE_LIMIT_WINDOW", 60)

	c.MarketTimezone = getEnvOrDefault("MARKET_TIMEZONE", "Europe/Sofia")
	c.QueryTimeout = getEnvAsDuration("QUERY_TIMEOUT", 10*time.Second)
	c.CronSecret = os.Getenv("CRON_SECRET")
	c.UnsubscribeSecret = os.Getenv("UNSUBSCRIBE_SECRET")

	return c.validate()
}

// validate checks settings that would otherwise fail late at runtime
func (c *Config) validate() error {
	if c.Database.Driver != DriverPostgres && c.Database.Driver != DriverSQLite {
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
	}

	loc, err := time.LoadLocation(c.MarketTimezone)
	if err != nil {
		return fmt.Errorf("invalid MARKET_TIMEZONE %q: %w", c.MarketTimezone, err)
	}
	c.Location = loc

	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}

	if c.Scheduler.Enabled {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(c.Scheduler.IngestSchedule); err != nil {
			return fmt.Errorf("invalid INGEST_SCHEDULE: %w", err)
		}
		if _, err := parser.Parse(c.Scheduler.AlertsSchedule); err != nil {
			return fmt.Errorf("invalid ALERTS_SCHEDULE: %w", err)
		}
	}

	return nil
}

// getEnvAsInt retrieves an environment variable and converts it to an integer
func getEnvAsInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvAsBool retrieves an environment variable and converts it to a boolean
func getEnvAsBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

// getEnvAsDuration retrieves an environment variable and parses it as a duration
func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return defaultVal
}

func getEnvOrDefault(key string, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

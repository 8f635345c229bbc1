// Package provider handles fetching raw price feeds from external sources
package provider

import (
	"context"
	"time"

	"sellwatch/internal/parser"
)

// Config represents the configuration for a provider
type Config struct {
	// URL is the feed location. A {date} placeholder is replaced with the
	// requested day, otherwise the day is sent as a date query parameter.
	URL string `json:"url"`
	// Timeout bounds a single upstream request
	Timeout time.Duration `json:"timeout"`
	// Placeholder synthesizes prices when URL is empty
	Placeholder bool `json:"placeholder"`
	// UserAgent is sent with every request
	UserAgent string `json:"user_agent"`
}

// Provider is the interface that all price feed providers must implement
type Provider interface {
	// Name returns the unique name of the provider
	Name() string
	// Fetch retrieves the raw feed for a YYYY-MM-DD date
	Fetch(ctx context.Context, date string) (parser.RawPayload, error)
}

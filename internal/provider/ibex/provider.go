package ibex

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"sellwatch/internal/parser"
	"sellwatch/internal/provider"
)

const (
	// ProviderName is the unique identifier for the IBEX provider
	ProviderName = "ibex"
	// DefaultTimeout applies when the config leaves Timeout unset
	DefaultTimeout = 15 * time.Second

	datePlaceholder = "{date}"
	maxBodyBytes    = 10 << 20
	acceptHeader    = "text/html, application/json, text/csv, */*"
)

// Provider implements provider.Provider for the IBEX day-ahead market page
type Provider struct {
	config provider.Config
	client *http.Client
	logger zerolog.Logger
}

// NewProvider creates a new IBEX provider
func NewProvider(config provider.Config, logger zerolog.Logger) *Provider {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	return &Provider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger.With().Str("component", "ibex_provider").Logger(),
	}
}

// Name returns the provider's unique identifier
func (p *Provider) Name() string {
	return ProviderName
}

// Fetch downloads and classifies the feed for date
func (p *Provider) Fetch(ctx context.Context, date string) (parser.RawPayload, error) {
	if p.config.URL == "" {
		if p.config.Placeholder {
			p.logger.Warn().Str("date", date).Msg("feed url not configured, using placeholder prices")
			return parser.PlaceholderPayload{}, nil
		}
		return nil, &provider.ConfigurationError{Setting: "OFFICIAL_PRICE_SOURCE_URL"}
	}

	reqURL, err := BuildURL(p.config.URL, date)
	if err != nil {
		return nil, &provider.ConfigurationError{Setting: "OFFICIAL_PRICE_SOURCE_URL"}
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	if p.config.UserAgent != "" {
		req.Header.Set("User-Agent", p.config.UserAgent)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &provider.FetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &provider.FetchError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &provider.FetchError{Err: fmt.Errorf("failed to read body: %w", err)}
	}

	payload := parser.Classify(body, resp.Header.Get("Content-Type"))
	p.logger.Debug().
		Str("date", date).
		Str("kind", string(payload.Kind())).
		Int("bytes", len(body)).
		Msg("fetched price feed")

	return payload, nil
}

// BuildURL substitutes date into the feed template. Without a {date}
// placeholder the date is set as a query parameter.
func BuildURL(template, date string) (string, error) {
	if strings.Contains(template, datePlaceholder) {
		return strings.ReplaceAll(template, datePlaceholder, url.QueryEscape(date)), nil
	}

	u, err := url.Parse(template)
	if err != nil {
		return "", fmt.Errorf("invalid feed url: %w", err)
	}
	q := u.Query()
	q.Set("date", date)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

var _ provider.Provider = (*Provider)(nil)

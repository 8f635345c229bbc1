package ibex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellwatch/internal/parser"
	"sellwatch/internal/provider"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{name: "Path Placeholder", template: "https://ibex.test/prices/{date}.json", want: "https://ibex.test/prices/2025-06-01.json"},
		{name: "Query Placeholder", template: "https://ibex.test/dam?day={date}&lang=en", want: "https://ibex.test/dam?day=2025-06-01&lang=en"},
		{name: "No Placeholder", template: "https://ibex.test/sdac-pv-en/", want: "https://ibex.test/sdac-pv-en/?date=2025-06-01"},
		{name: "Existing Query", template: "https://ibex.test/dam?lang=en", want: "https://ibex.test/dam?date=2025-06-01&lang=en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildURL(tt.template, "2025-06-01")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetch_MissingURL(t *testing.T) {
	p := NewProvider(provider.Config{}, zerolog.Nop())

	_, err := p.Fetch(context.Background(), "2025-06-01")

	var cfgErr *provider.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "OFFICIAL_PRICE_SOURCE_URL", cfgErr.Setting)
}

func TestFetch_Placeholder(t *testing.T) {
	p := NewProvider(provider.Config{Placeholder: true}, zerolog.Nop())

	payload, err := p.Fetch(context.Background(), "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, parser.KindPlaceholder, payload.Kind())
}

func TestFetch_ClassifiesBody(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        parser.Kind
	}{
		{name: "JSON", contentType: "application/json", body: `[{"time":"00:00","price":10}]`, want: parser.KindJSON},
		{name: "CSV", contentType: "text/csv", body: "time,price\n00:00,10\n", want: parser.KindCSV},
		{name: "HTML", contentType: "text/html", body: "<table><tr><td>00:00</td><td>10</td></tr></table>", want: parser.KindHTML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotDate, gotUA string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotDate = r.URL.Query().Get("date")
				gotUA = r.Header.Get("User-Agent")
				w.Header().Set("Content-Type", tt.contentType)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := NewProvider(provider.Config{URL: server.URL, UserAgent: "sellwatch-test"}, zerolog.Nop())
			payload, err := p.Fetch(context.Background(), "2025-06-01")
			require.NoError(t, err)

			assert.Equal(t, tt.want, payload.Kind())
			assert.Equal(t, "2025-06-01", gotDate)
			assert.Equal(t, "sellwatch-test", gotUA)
		})
	}
}

func TestFetch_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := NewProvider(provider.Config{URL: server.URL}, zerolog.Nop())
	_, err := p.Fetch(context.Background(), "2025-06-01")

	var fetchErr *provider.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	p := NewProvider(provider.Config{URL: server.URL, Timeout: 50 * time.Millisecond}, zerolog.Nop())
	_, err := p.Fetch(context.Background(), "2025-06-01")

	var fetchErr *provider.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Zero(t, fetchErr.StatusCode)
}

package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellwatch/internal/models"
)

const testDate = "2025-06-01"

func interval(start, end string, price float64) models.PriceInterval {
	return models.PriceInterval{
		Date:            testDate,
		StartTime:       start,
		EndTime:         end,
		IntervalMinutes: 15,
		PriceEurMwh:     price,
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		want        Kind
	}{
		{name: "JSON By Prefix", body: `[{"time":"00:00","price":1}]`, want: KindJSON},
		{name: "JSON By Content Type", body: ` [] `, contentType: "application/json; charset=utf-8", want: KindJSON},
		{name: "CSV", body: "time,price\n00:00,10", contentType: "text/csv", want: KindCSV},
		{name: "HTML", body: "<html><table><tr><td>a,b</td></tr></table></html>", contentType: "text/html", want: KindHTML},
		{name: "HTML With Commas Before Table", body: "<html><head><meta name=\"keywords\" content=\"ibex, prices, dam\"></head>\n<body><table></table></body></html>", want: KindHTML},
		{name: "Broken JSON Falls Through To CSV", body: `[{"time":"00:00",`, want: KindCSV},
		{name: "Unknown", body: "maintenance", contentType: "text/plain", want: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify([]byte(tt.body), tt.contentType)
			assert.Equal(t, tt.want, got.Kind())
		})
	}
}

func TestParseJSON(t *testing.T) {
	raw := Classify([]byte(`[
		{"startTime": "00:00", "priceEurMwh": 101.5},
		{"start_time": "0:15", "price_eur_mwh": "99.10", "endTime": "09:99"},
		{"time": "23:45", "price": -4.2},
		{"time": "12:00", "value": 80, "intervalMinutes": 60},
		{"time": "25:00", "price": 10},
		{"price": 10},
		{"time": "01:00", "price": "n/a"}
	]`), "application/json")

	got := New(zerolog.Nop()).Parse(raw, testDate)

	want := []models.PriceInterval{
		interval("00:00", "00:15", 101.5),
		interval("00:15", "00:30", 99.10),
		interval("23:45", "00:00", -4.2),
		{Date: testDate, StartTime: "12:00", EndTime: "13:00", IntervalMinutes: 60, PriceEurMwh: 80},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCSV(t *testing.T) {
	text := "Hour,Zone,Price_EUR_MWh\n" +
		"00:00,BG,\"1,234.50\"\n" +
		"00:15,BG,87.3\n" +
		"short\n" +
		"9:30,BG,50\n" +
		"bad,BG,10\n"

	got := New(zerolog.Nop()).Parse(Classify([]byte(text), "text/csv"), testDate)

	want := []models.PriceInterval{
		interval("00:15", "00:30", 87.3),
		interval("09:30", "09:45", 50),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCSV_MissingColumns(t *testing.T) {
	got := New(zerolog.Nop()).Parse(CSVPayload{Text: "foo,bar\n1,2"}, testDate)
	assert.Empty(t, got)
}

func TestParseHTML(t *testing.T) {
	doc := `<html><body>
		<table>
			<tr><th>Interval</th><th>Price</th></tr>
			<tr><td>14:00-14:15</td><td>82.45 €</td></tr>
			<tr><td>Product</td><td><b>14:15</b>&nbsp;-&nbsp;14:30</td><td>1,082.10&nbsp;EUR</td></tr>
			<tr><td>14:30-14:45</td><td>0.00</td></tr>
			<tr><td>14:45-15:00</td><td>-</td></tr>
			<tr><td>only one cell</td></tr>
		</table>
		<table>
			<tr><td>23:45 - 00:00</td><td>70</td></tr>
			<tr><td>14:00-14:15</td><td>999</td></tr>
		</table>
	</body></html>`

	got := New(zerolog.Nop()).Parse(Classify([]byte(doc), "text/html"), testDate)

	want := []models.PriceInterval{
		interval("14:00", "14:15", 82.45),
		interval("14:15", "14:30", 1082.10),
		interval("23:45", "00:00", 70),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseHTML_SingleRow(t *testing.T) {
	doc := `<table><tr><td>14:00-14:15</td><td>82.45 €</td></tr></table>`

	got := New(zerolog.Nop()).Parse(HTMLPayload{Document: doc}, testDate)

	require.Len(t, got, 1)
	assert.Equal(t, "14:00", got[0].StartTime)
	assert.Equal(t, "14:15", got[0].EndTime)
	assert.InDelta(t, 82.45, got[0].PriceEurMwh, 1e-9)
}

func TestParseHTML_NestedLayoutTable(t *testing.T) {
	doc := `<table class="layout">
		<tr>
			<td>Updated 12:30 EET</td>
			<td>
				<table>
					<tr><td>14:00-14:15</td><td>82.45 €</td></tr>
					<tr><td>14:15-14:30</td><td>90.10 €</td></tr>
				</table>
			</td>
		</tr>
		<tr><td>Footer</td><td>Prices in EUR/MWh</td></tr>
	</table>`

	got := New(zerolog.Nop()).Parse(HTMLPayload{Document: doc}, testDate)

	want := []models.PriceInterval{
		interval("14:00", "14:15", 82.45),
		interval("14:15", "14:30", 90.10),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseHTML_EmptyTableLogsSnippet(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	doc := `<table></table>` + strings.Repeat("x", 1000)

	got := New(logger).Parse(HTMLPayload{Document: doc}, testDate)

	require.NotNil(t, got)
	assert.Empty(t, got)
	assert.Contains(t, buf.String(), "no price records parsed from HTML")
	assert.Contains(t, buf.String(), "<table></table>")
	assert.NotContains(t, buf.String(), strings.Repeat("x", 600))
}

func TestParsePlaceholder(t *testing.T) {
	p := New(zerolog.Nop())

	first := p.Parse(PlaceholderPayload{}, testDate)
	second := p.Parse(PlaceholderPayload{}, testDate)

	require.Len(t, first, 96)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("placeholder not deterministic (-first +second):\n%s", diff)
	}

	assert.Equal(t, "00:00", first[0].StartTime)
	assert.Equal(t, "00:00", first[95].EndTime)
	for i, rec := range first {
		assert.GreaterOrEqual(t, rec.PriceEurMwh, 50.0, i)
		assert.Less(t, rec.PriceEurMwh, 150.0, i)
		if i > 0 {
			assert.Equal(t, first[i-1].EndTime, rec.StartTime)
		}
	}
}

func TestParseUnknown(t *testing.T) {
	got := New(zerolog.Nop()).Parse(UnknownPayload{Body: "nothing"}, testDate)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

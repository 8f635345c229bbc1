package parser

import (
	"encoding/csv"
	"encoding/json"
	"hash/fnv"
	"io"
	"math"
	"math/rand"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"sellwatch/internal/models"
	"sellwatch/internal/timeutil"
)

const (
	// htmlScanCells is how many leading cells of a row may hold the time
	htmlScanCells = 3
	// htmlSnippetLength is how much of an unparseable document is logged
	htmlSnippetLength = 500

	placeholderBase   = 50.0
	placeholderSpread = 100.0
)

var (
	jsonTimeKeys     = []string{"startTime", "start_time", "time"}
	jsonIntervalKeys = []string{"intervalMinutes", "interval_minutes"}
	jsonPriceKeys    = []string{"priceEurMwh", "price_eur_mwh", "price", "value"}

	csvTimeHeaders  = []string{"time", "starttime", "start_time", "hour"}
	csvPriceHeaders = []string{"price", "priceeurmwh", "price_eur_mwh", "value"}

	priceToken = regexp.MustCompile(`-?\d[\d,]*(?:\.\d+)?`)
)

// Parser converts raw payloads into interval records
type Parser struct {
	logger zerolog.Logger
}

// New creates a parser that reports unparseable documents on logger
func New(logger zerolog.Logger) *Parser {
	return &Parser{logger: logger.With().Str("component", "parser").Logger()}
}

// Parse returns the intervals found in raw for date. Malformed rows are
// dropped and a payload with no usable rows yields an empty slice.
func (p *Parser) Parse(raw RawPayload, date string) []models.PriceInterval {
	var records []models.PriceInterval

	switch payload := raw.(type) {
	case JSONPayload:
		records = parseJSON(payload, date)
	case CSVPayload:
		records = parseCSV(payload, date)
	case HTMLPayload:
		records = parseHTML(payload, date)
		if len(records) == 0 {
			p.logger.Warn().
				Str("date", date).
				Str("snippet", snippet(payload.Document)).
				Msg("no price records parsed from HTML, page structure may have changed")
		}
	case PlaceholderPayload:
		records = placeholder(date)
	default:
		p.logger.Warn().Str("date", date).Msg("unrecognised payload, no records parsed")
	}

	return dedupe(records)
}

func parseJSON(payload JSONPayload, date string) []models.PriceInterval {
	records := make([]models.PriceInterval, 0, len(payload.Items))
	for _, item := range payload.Items {
		start, ok := timeutil.Normalize(firstString(item, jsonTimeKeys))
		if !ok {
			continue
		}

		price, ok := firstNumber(item, jsonPriceKeys)
		if !ok {
			continue
		}

		interval := timeutil.DefaultIntervalMinutes
		if v, ok := firstNumber(item, jsonIntervalKeys); ok && v > 0 && v == math.Trunc(v) {
			interval = int(v)
		}

		if rec, ok := newInterval(date, start, interval, price); ok {
			records = append(records, rec)
		}
	}
	return records
}

func parseCSV(payload CSVPayload, date string) []models.PriceInterval {
	reader := csv.NewReader(strings.NewReader(payload.Text))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return []models.PriceInterval{}
	}

	timeCol, priceCol := -1, -1
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if timeCol < 0 && contains(csvTimeHeaders, name) {
			timeCol = i
		}
		if priceCol < 0 && contains(csvPriceHeaders, name) {
			priceCol = i
		}
	}
	if timeCol < 0 || priceCol < 0 {
		return []models.PriceInterval{}
	}

	var records []models.PriceInterval
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if timeCol >= len(row) || priceCol >= len(row) {
			continue
		}

		start, ok := timeutil.Normalize(row[timeCol])
		if !ok {
			continue
		}
		price, ok := parseNumber(row[priceCol])
		if !ok {
			continue
		}
		if rec, ok := newInterval(date, start, timeutil.DefaultIntervalMinutes, price); ok {
			records = append(records, rec)
		}
	}
	return records
}

func parseHTML(payload HTMLPayload, date string) []models.PriceInterval {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(payload.Document))
	if err != nil {
		return []models.PriceInterval{}
	}

	var records []models.PriceInterval
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		// Rows of layout tables wrap the price table; their text merges
		// the nested rows.
		if row.Find("table").Length() > 0 {
			return
		}
		var cells []string
		row.ChildrenFiltered("td, th").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, cleanCell(cell.Text()))
		})
		if len(cells) < 2 {
			return
		}

		timeText, priceText := "", ""
		for i := 0; i < len(cells) && i < htmlScanCells; i++ {
			if timeutil.LooksLikeClock(cells[i]) {
				timeText = cells[i]
				if i+1 < len(cells) {
					priceText = cells[i+1]
				}
				break
			}
		}
		if timeText == "" {
			timeText, priceText = cells[0], cells[len(cells)-1]
		}

		// Normalize keeps the start of a range like 14:00-14:15.
		start, ok := timeutil.Normalize(timeText)
		if !ok {
			return
		}
		price, ok := extractPrice(priceText)
		if !ok || price <= 0 {
			return
		}
		if rec, ok := newInterval(date, start, timeutil.DefaultIntervalMinutes, price); ok {
			records = append(records, rec)
		}
	})
	return records
}

func placeholder(date string) []models.PriceInterval {
	h := fnv.New64a()
	_, _ = h.Write([]byte(date))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	records := make([]models.PriceInterval, 0, timeutil.MinutesPerDay/timeutil.DefaultIntervalMinutes)
	for m := 0; m < timeutil.MinutesPerDay; m += timeutil.DefaultIntervalMinutes {
		price := decimal.NewFromFloat(placeholderBase + rng.Float64()*placeholderSpread).Truncate(2).InexactFloat64()
		if rec, ok := newInterval(date, timeutil.FromMinutes(m), timeutil.DefaultIntervalMinutes, price); ok {
			records = append(records, rec)
		}
	}
	return records
}

func newInterval(date, start string, interval int, price float64) (models.PriceInterval, bool) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return models.PriceInterval{}, false
	}
	end, err := timeutil.EndTime(start, interval)
	if err != nil {
		return models.PriceInterval{}, false
	}
	return models.PriceInterval{
		Date:            date,
		StartTime:       start,
		EndTime:         end,
		IntervalMinutes: interval,
		PriceEurMwh:     price,
	}, true
}

// dedupe keeps the first record for every start time
func dedupe(records []models.PriceInterval) []models.PriceInterval {
	seen := make(map[string]struct{}, len(records))
	out := make([]models.PriceInterval, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.StartTime]; ok {
			continue
		}
		seen[rec.StartTime] = struct{}{}
		out = append(out, rec)
	}
	return out
}

func firstString(item map[string]any, keys []string) string {
	for _, key := range keys {
		if v, ok := item[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func firstNumber(item map[string]any, keys []string) (float64, bool) {
	for _, key := range keys {
		switch v := item[key].(type) {
		case float64:
			return v, true
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return f, true
			}
		case string:
			if f, ok := parseNumber(v); ok {
				return f, true
			}
		}
	}
	return 0, false
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// extractPrice reads the first numeric token of text, ignoring thousands separators
func extractPrice(text string) (float64, bool) {
	token := priceToken.FindString(text)
	if token == "" {
		return 0, false
	}
	return parseNumber(strings.ReplaceAll(token, ",", ""))
}

func cleanCell(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\u00a0", " "))
}

func snippet(doc string) string {
	if len(doc) <= htmlSnippetLength {
		return doc
	}
	return doc[:htmlSnippetLength]
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

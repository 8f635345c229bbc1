// Package parser turns upstream price feed payloads of varying shape into
// normalized interval records for a single day.
package parser

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Kind names a payload variant
type Kind string

const (
	KindJSON        Kind = "json"
	KindCSV         Kind = "csv"
	KindHTML        Kind = "html"
	KindPlaceholder Kind = "placeholder"
	KindUnknown     Kind = "unknown"
)

// RawPayload is an upstream response whose concrete type selects the parser
type RawPayload interface {
	Kind() Kind
}

// JSONPayload is a decoded JSON array of objects
type JSONPayload struct {
	Items []map[string]any
}

// CSVPayload is comma separated text with a header row
type CSVPayload struct {
	Text string
}

// HTMLPayload is a document containing one or more tables
type HTMLPayload struct {
	Document string
}

// PlaceholderPayload asks for synthesized prices
type PlaceholderPayload struct{}

// UnknownPayload is a body no parser recognises. It yields no records.
type UnknownPayload struct {
	Body string
}

func (JSONPayload) Kind() Kind        { return KindJSON }
func (CSVPayload) Kind() Kind         { return KindCSV }
func (HTMLPayload) Kind() Kind        { return KindHTML }
func (PlaceholderPayload) Kind() Kind { return KindPlaceholder }
func (UnknownPayload) Kind() Kind     { return KindUnknown }

// csvSniffLines is how many leading lines are checked for a comma
const csvSniffLines = 3

// Classify picks the payload variant for an upstream body. JSON wins when the
// content type says so or the body starts with '['. Any body with table
// markup is HTML, even when it has commas; otherwise commas mean CSV.
func Classify(body []byte, contentType string) RawPayload {
	trimmed := bytes.TrimSpace(body)
	lower := strings.ToLower(string(trimmed))

	if strings.Contains(strings.ToLower(contentType), "json") || bytes.HasPrefix(trimmed, []byte("[")) {
		var items []map[string]any
		if err := json.Unmarshal(trimmed, &items); err == nil {
			return JSONPayload{Items: items}
		}
	}

	if strings.Contains(lower, "<table") {
		return HTMLPayload{Document: string(trimmed)}
	}

	if looksLikeCSV(string(trimmed)) {
		return CSVPayload{Text: string(trimmed)}
	}

	return UnknownPayload{Body: string(trimmed)}
}

func looksLikeCSV(text string) bool {
	lines := strings.SplitN(text, "\n", csvSniffLines+1)
	if len(lines) > csvSniffLines {
		lines = lines[:csvSniffLines]
	}
	for _, line := range lines {
		if strings.Contains(line, ",") {
			return true
		}
	}
	return false
}

package models

import "time"

// IngestResult summarises ingestion of a single date
type IngestResult struct {
	Date     string `json:"date" example:"2025-03-20"`
	Fetched  int    `json:"fetched" example:"96"`
	Upserted int    `json:"upserted" example:"96"`
	Error    string `json:"error,omitempty"`
}

// IngestResponse is returned by the ingestion job endpoint
type IngestResponse struct {
	Success   bool           `json:"success"`
	Timestamp time.Time      `json:"timestamp"`
	Results   []IngestResult `json:"results"`
}

// EvaluateResult summarises alert evaluation of a single date
type EvaluateResult struct {
	Date            string   `json:"date" example:"2025-03-20"`
	TriggeredAlerts int      `json:"triggeredAlerts" example:"3"`
	SentEmails      int      `json:"sentEmails" example:"2"`
	SentPushes      int      `json:"sentPushes" example:"1"`
	Errors          []string `json:"errors"`
}

// EvaluateResponse is returned by the alert evaluation job endpoint
type EvaluateResponse struct {
	Success   bool             `json:"success"`
	Timestamp time.Time        `json:"timestamp"`
	Results   []EvaluateResult `json:"results"`
}

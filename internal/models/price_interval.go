package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceInterval represents the sell price for one fixed-length slot of a day
type PriceInterval struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Date            string    `json:"date" db:"date" example:"2025-03-20"`
	StartTime       string    `json:"startTime" db:"start_time" example:"14:00"`
	EndTime         string    `json:"endTime" db:"end_time" example:"14:15"`
	IntervalMinutes int       `json:"intervalMinutes" db:"interval_minutes" example:"15"`
	PriceEurMwh     float64   `json:"priceEurMwh" db:"price_eur_mwh" example:"82.45"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// FormatPrice renders a price with two decimals
func FormatPrice(price float64) string {
	return decimal.NewFromFloat(price).StringFixed(2)
}

// BestInterval is a ranked interval returned by the best-intervals endpoint
type BestInterval struct {
	Date        string  `json:"date" example:"2025-03-20"`
	StartTime   string  `json:"startTime" example:"19:00"`
	EndTime     string  `json:"endTime" example:"19:15"`
	PriceEurMwh float64 `json:"priceEurMwh" example:"182.10"`
}

// PricesResponse represents the prices of a single day
type PricesResponse struct {
	Date    string          `json:"date" example:"2025-03-20"`
	Count   int             `json:"count" example:"96"`
	Records []PriceInterval `json:"records"`
	// Stale is set when the store could not be read and an empty placeholder is returned
	Stale bool `json:"stale,omitempty"`
}

// PriceDatesResponse lists the most recent dates that have price data
type PriceDatesResponse struct {
	Dates []string `json:"dates"`
}

// BestIntervalsResponse represents the top intervals of a day
type BestIntervalsResponse struct {
	Date      string         `json:"date" example:"2025-03-20"`
	Intervals []BestInterval `json:"intervals"`
}

package repository

import (
	"context"
	"fmt"

	"sellwatch/internal/models"
	"sellwatch/internal/timeutil"
)

// DefaultDatesLimit is the number of dates ListDates returns when limit is not positive
const DefaultDatesLimit = 14

// PriceIntervalRepository defines the interface for interval price storage
type PriceIntervalRepository interface {
	Repository
	// Upsert inserts or updates every record on (date, start_time) and returns
	// how many succeeded. Failing records are logged and skipped.
	Upsert(ctx context.Context, records []models.PriceInterval) (int, error)
	// ListByDate returns the intervals of a day ordered by start time
	ListByDate(ctx context.Context, date string) ([]models.PriceInterval, error)
	// ListDates returns the most recent dates that have data, newest first
	ListDates(ctx context.Context, limit int) ([]string, error)
}

// ValidateInterval checks a record before it is written
func ValidateInterval(rec models.PriceInterval) error {
	if err := timeutil.ValidateDate(rec.Date); err != nil {
		return fmt.Errorf("%w: date %q", ErrInvalidInput, rec.Date)
	}
	start, err := timeutil.ToMinutes(rec.StartTime)
	if err != nil || start >= timeutil.MinutesPerDay {
		return fmt.Errorf("%w: start time %q", ErrInvalidInput, rec.StartTime)
	}
	if rec.IntervalMinutes <= 0 {
		return fmt.Errorf("%w: interval minutes %d", ErrInvalidInput, rec.IntervalMinutes)
	}
	if _, err := timeutil.ToMinutes(rec.EndTime); err != nil {
		return fmt.Errorf("%w: end time %q", ErrInvalidInput, rec.EndTime)
	}
	return nil
}

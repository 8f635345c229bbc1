// Package ranking selects the best selling intervals of a day.
package ranking

import (
	"context"
	"fmt"
	"sort"

	"sellwatch/internal/models"
	"sellwatch/internal/repository"
)

const (
	// DefaultLimit is how many intervals are returned when none is requested
	DefaultLimit = 5
	// MaxLimit caps the requested number of intervals
	MaxLimit = 96
)

// TopIntervals returns the k highest priced intervals. Equal prices keep the
// earlier start time first. k <= 0 yields an empty slice.
func TopIntervals(intervals []models.PriceInterval, k int) []models.BestInterval {
	if k <= 0 || len(intervals) == 0 {
		return []models.BestInterval{}
	}

	sorted := make([]models.PriceInterval, len(intervals))
	copy(sorted, intervals)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime < sorted[j].StartTime
	})
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PriceEurMwh > sorted[j].PriceEurMwh
	})

	if k > len(sorted) {
		k = len(sorted)
	}

	best := make([]models.BestInterval, 0, k)
	for _, iv := range sorted[:k] {
		best = append(best, models.BestInterval{
			Date:        iv.Date,
			StartTime:   iv.StartTime,
			EndTime:     iv.EndTime,
			PriceEurMwh: iv.PriceEurMwh,
		})
	}
	return best
}

// Service ranks stored intervals
type Service struct {
	prices repository.PriceIntervalRepository
}

// NewService creates a ranking service
func NewService(prices repository.PriceIntervalRepository) *Service {
	return &Service{prices: prices}
}

// Top loads a day from the store and returns its k best intervals
func (s *Service) Top(ctx context.Context, date string, k int) ([]models.BestInterval, error) {
	intervals, err := s.prices.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load intervals for %s: %w", date, err)
	}
	return TopIntervals(intervals, k), nil
}

// ClampLimit applies the default and the upper bound to a requested limit
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

package ranking

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellwatch/internal/models"
	"sellwatch/internal/repository/sqlite"
	"sellwatch/internal/testutil/db"
)

func iv(start string, price float64) models.PriceInterval {
	return models.PriceInterval{Date: "2025-06-01", StartTime: start, EndTime: start, IntervalMinutes: 15, PriceEurMwh: price}
}

func TestTopIntervals(t *testing.T) {
	intervals := []models.PriceInterval{
		iv("10:00", 90),
		iv("19:15", 150),
		iv("08:00", 120),
		iv("19:00", 150),
		iv("12:00", -3),
		iv("20:00", 130),
		iv("07:00", 120),
	}

	got := TopIntervals(intervals, 5)

	require.Len(t, got, 5)
	var starts []string
	for _, b := range got {
		starts = append(starts, b.StartTime)
	}
	assert.Equal(t, []string{"19:00", "19:15", "20:00", "07:00", "08:00"}, starts)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].PriceEurMwh, got[i].PriceEurMwh)
	}

	// Input order is untouched.
	assert.Equal(t, "10:00", intervals[0].StartTime)
}

func TestTopIntervals_Bounds(t *testing.T) {
	intervals := []models.PriceInterval{iv("00:00", 1), iv("00:15", 2)}

	assert.Len(t, TopIntervals(intervals, 5), 2)
	assert.Empty(t, TopIntervals(intervals, 0))
	assert.Empty(t, TopIntervals(intervals, -1))
	assert.NotNil(t, TopIntervals(nil, 3))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, ClampLimit(0))
	assert.Equal(t, 10, ClampLimit(10))
	assert.Equal(t, MaxLimit, ClampLimit(1000))
}

func TestService_Top(t *testing.T) {
	prices := sqlite.NewPriceIntervalRepository(db.SetupSQLiteTestDB(t), zerolog.Nop())
	_, err := prices.Upsert(context.Background(), []models.PriceInterval{
		{Date: "2025-06-01", StartTime: "00:00", EndTime: "00:15", IntervalMinutes: 15, PriceEurMwh: 40},
		{Date: "2025-06-01", StartTime: "00:15", EndTime: "00:30", IntervalMinutes: 15, PriceEurMwh: 60},
	})
	require.NoError(t, err)

	got, err := NewService(prices).Top(context.Background(), "2025-06-01", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "00:15", got[0].StartTime)
	assert.Equal(t, "00:30", got[0].EndTime)
}

package timeutil

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinutes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "Midnight", input: "00:00", want: 0},
		{name: "Afternoon", input: "14:15", want: 855},
		{name: "Last Slot", input: "23:45", want: 1425},
		{name: "End Of Day", input: "24:00", want: MinutesPerDay},
		{name: "Past End Of Day", input: "24:15", wantErr: true},
		{name: "Bad Minute", input: "12:60", wantErr: true},
		{name: "Unpadded", input: "9:00", wantErr: true},
		{name: "Garbage", input: "ab:cd", wantErr: true},
		{name: "Empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToMinutes(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidClock)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEndTime(t *testing.T) {
	tests := []struct {
		start    string
		interval int
		want     string
	}{
		{start: "00:00", interval: 15, want: "00:15"},
		{start: "10:45", interval: 15, want: "11:00"},
		{start: "23:45", interval: 15, want: "00:00"},
		{start: "23:00", interval: 60, want: "00:00"},
		{start: "12:30", interval: 30, want: "13:00"},
	}

	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			got, err := EndTime(tt.start, tt.interval)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := EndTime("nope", 15)
	require.Error(t, err)
}

func TestEndTimeAllSlots(t *testing.T) {
	for m := 0; m < MinutesPerDay; m += DefaultIntervalMinutes {
		start := FromMinutes(m)
		end, err := EndTime(start, DefaultIntervalMinutes)
		require.NoError(t, err)

		endMinutes, err := ToMinutes(end)
		require.NoError(t, err)
		assert.Equal(t, (m+DefaultIntervalMinutes)%MinutesPerDay, endMinutes, start)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{input: "14:00", want: "14:00", wantOK: true},
		{input: "9:15", want: "09:15", wantOK: true},
		{input: "14:00-14:15", want: "14:00", wantOK: true},
		{input: " 07:30 CET", want: "07:30", wantOK: true},
		{input: "25:00", wantOK: false},
		{input: "hour 1", wantOK: false},
		{input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Normalize(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateDate(t *testing.T) {
	require.NoError(t, ValidateDate("2025-03-30"))
	require.ErrorIs(t, ValidateDate("2025-3-30"), ErrInvalidDate)
	require.ErrorIs(t, ValidateDate("2025-02-30"), ErrInvalidDate)
	require.ErrorIs(t, ValidateDate("30.03.2025"), ErrInvalidDate)
	require.ErrorIs(t, ValidateDate(""), ErrInvalidDate)
}

func TestInWindow(t *testing.T) {
	tests := []struct {
		name  string
		clock string
		from  string
		to    string
		want  bool
	}{
		{name: "No Window", clock: "03:00", want: true},
		{name: "Lower Bound Inclusive", clock: "12:00", from: "12:00", to: "13:00", want: true},
		{name: "Inside", clock: "12:45", from: "12:00", to: "13:00", want: true},
		{name: "Upper Bound Exclusive", clock: "13:00", from: "12:00", to: "13:00", want: false},
		{name: "Before", clock: "11:45", from: "12:00", to: "13:00", want: false},
		{name: "Only From", clock: "23:45", from: "20:00", want: true},
		{name: "Only From Before", clock: "19:45", from: "20:00", want: false},
		{name: "Only To", clock: "00:00", to: "06:00", want: true},
		{name: "Only To After", clock: "06:00", to: "06:00", want: false},
		{name: "Bad Clock", clock: "xx", from: "00:00", to: "24:00", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InWindow(tt.clock, tt.from, tt.to))
		})
	}
}

func TestUpcomingDates(t *testing.T) {
	sofia, err := time.LoadLocation("Europe/Sofia")
	require.NoError(t, err)

	// 22:30 UTC is already the next day in Sofia.
	now := time.Date(2025, 6, 30, 22, 30, 0, 0, time.UTC)
	assert.Equal(t, []string{"2025-07-01", "2025-07-02"}, UpcomingDates(now, sofia))
	assert.Equal(t, []string{"2025-06-30", "2025-07-01"}, UpcomingDates(now, nil))
}

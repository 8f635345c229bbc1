// Package timeutil converts between HH:mm clock strings, minute offsets and
// market-local calendar dates.
package timeutil

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	// DateLayout is the calendar date format used throughout the API
	DateLayout = "2006-01-02"
	// MinutesPerDay is the number of minutes in a trading day
	MinutesPerDay = 24 * 60
	// DefaultIntervalMinutes is the slot length of the day-ahead market
	DefaultIntervalMinutes = 15
)

var (
	// ErrInvalidClock is returned when a string is not a valid HH:mm time
	ErrInvalidClock = errors.New("invalid clock time, use HH:mm")
	// ErrInvalidDate is returned when a string is not a valid YYYY-MM-DD date
	ErrInvalidDate = errors.New("invalid date format, use YYYY-MM-DD")

	clockPattern = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ToMinutes converts a strict HH:mm string to minutes since midnight.
// "24:00" is accepted as the end-of-day boundary.
func ToMinutes(clock string) (int, error) {
	if len(clock) != 5 || clock[2] != ':' {
		return 0, ErrInvalidClock
	}
	h, err := strconv.Atoi(clock[:2])
	if err != nil {
		return 0, ErrInvalidClock
	}
	m, err := strconv.Atoi(clock[3:])
	if err != nil {
		return 0, ErrInvalidClock
	}
	if h == 24 && m == 0 {
		return MinutesPerDay, nil
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, ErrInvalidClock
	}
	return h*60 + m, nil
}

// FromMinutes formats minutes since midnight as HH:mm, wrapping at 24:00.
func FromMinutes(minutes int) string {
	minutes %= MinutesPerDay
	if minutes < 0 {
		minutes += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// EndTime returns start + intervalMinutes as HH:mm, so 23:45 + 15 is 00:00.
func EndTime(start string, intervalMinutes int) (string, error) {
	m, err := ToMinutes(start)
	if err != nil {
		return "", err
	}
	return FromMinutes(m + intervalMinutes), nil
}

// Normalize extracts the first H:mm or HH:mm token from s and returns it
// zero-padded. It reports false when no valid clock time is present.
func Normalize(s string) (string, bool) {
	match := clockPattern.FindStringSubmatch(s)
	if match == nil {
		return "", false
	}
	h, _ := strconv.Atoi(match[1])
	m, _ := strconv.Atoi(match[2])
	if h > 23 || m > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", h, m), true
}

// LooksLikeClock reports whether s contains an H:mm style token.
func LooksLikeClock(s string) bool {
	return clockPattern.MatchString(s)
}

// ValidateDate checks that s is a real calendar date in YYYY-MM-DD form.
func ValidateDate(s string) error {
	if !datePattern.MatchString(s) {
		return ErrInvalidDate
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// FormatDate formats t as YYYY-MM-DD in its own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// InWindow reports whether clock falls in the half-open window [from, to).
// Empty bounds default to 00:00 and 24:00. Windows spanning midnight are
// not supported.
func InWindow(clock, from, to string) bool {
	if from == "" && to == "" {
		return true
	}
	t, err := ToMinutes(clock)
	if err != nil {
		return false
	}
	lo := 0
	if from != "" {
		if lo, err = ToMinutes(from); err != nil {
			return false
		}
	}
	hi := MinutesPerDay
	if to != "" {
		if hi, err = ToMinutes(to); err != nil {
			return false
		}
	}
	return t >= lo && t < hi
}

// UpcomingDates returns today and tomorrow in loc as YYYY-MM-DD strings.
func UpcomingDates(now time.Time, loc *time.Location) []string {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return []string{
		FormatDate(local),
		FormatDate(local.AddDate(0, 0, 1)),
	}
}

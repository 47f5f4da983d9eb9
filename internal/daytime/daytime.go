// Package daytime holds the minute-of-day encoding used to store slot
// boundaries and the calendar-day normalization shared by every component
// that builds (slot, date) composite keys. All calendar dates are normalized
// to UTC midnight; mixing normalizations makes the exception joins silently
// miss, so nothing outside this package formats a date key by hand.
package daytime

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"classtrack/internal/apperr"
)

// DateLayout is the canonical wire format for calendar dates.
const DateLayout = "2006-01-02"

// Encode parses "H:MM" or "HH:MM" wall-clock text into a minute-of-day
// integer. Out-of-range fields are rejected: accepting them would break the
// Decode(Encode(t)) round trip.
func Encode(text string) (int, error) {
	parts := strings.Split(text, ":")
	if len(parts) != 2 {
		return 0, apperr.Validation("time must be HH:MM")
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, apperr.Validation("time must be HH:MM")
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, apperr.Validation("time must be HH:MM")
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, apperr.Validation("time out of range")
	}
	return hours*60 + minutes, nil
}

// Decode formats a minute-of-day back to zero-padded "HH:MM".
func Decode(minuteOfDay int) string {
	return fmt.Sprintf("%02d:%02d", minuteOfDay/60, minuteOfDay%60)
}

// FormatDuration renders the span between two minute-of-day values for
// display, e.g. "1h 30m".
func FormatDuration(start, end int) string {
	span := end - start
	return fmt.Sprintf("%dh %dm", span/60, span%60)
}

// DayUTC truncates t to UTC calendar midnight.
func DayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey formats t's UTC calendar date as "YYYY-MM-DD".
func DateKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate parses a "YYYY-MM-DD" string into a UTC calendar day.
func ParseDate(text string) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, text, time.UTC)
	if err != nil {
		return time.Time{}, apperr.Validation("date must be YYYY-MM-DD")
	}
	return day, nil
}

// OccurrenceKey builds the composite key joining slot expansion with
// cancellation and attendance lookups.
func OccurrenceKey(slotID string, date time.Time) string {
	return slotID + "_" + DateKey(date)
}

// DayName returns the weekday name ("Monday".."Sunday") of t's UTC date.
func DayName(t time.Time) string {
	return t.UTC().Weekday().String()
}

// AtMinute places a minute-of-day on a concrete calendar day.
func AtMinute(day time.Time, minuteOfDay int) time.Time {
	d := DayUTC(day)
	return d.Add(time.Duration(minuteOfDay) * time.Minute)
}

// ValidDay reports whether name is one of the seven weekday names.
func ValidDay(name string) bool {
	switch name {
	case "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday":
		return true
	}
	return false
}

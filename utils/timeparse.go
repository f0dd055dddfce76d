package utils

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar days.
const DateLayout = "2006-01-02"

// ClockLayout is the wire format for slot times, e.g. "2:00 PM".
const ClockLayout = "3:04 PM"

// ParseDate parses a "2006-01-02" day string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// ParseClock parses a clock label ("2:00 PM" or "14:00") into minutes from
// midnight.
func ParseClock(s string) (int, error) {
	for _, layout := range []string{ClockLayout, "03:04 PM", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("unrecognized time %q", s)
}

// FormatClock renders minutes from midnight as a clock label, e.g. 840 ->
// "2:00 PM".
func FormatClock(minutes int) string {
	t := time.Date(0, 1, 1, 0, minutes, 0, 0, time.UTC)
	return t.Format(ClockLayout)
}

// CombineDateTime builds the absolute start time of a slot in the given
// location.
func CombineDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	day, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	minutes, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 0, minutes, 0, 0, loc), nil
}

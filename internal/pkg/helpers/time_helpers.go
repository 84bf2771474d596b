package helpers

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the wire format for calendar dates.
	DateLayout = "2006-01-02"
	// ClockLayout is the wire format for schedule times (24h).
	ClockLayout = "15:04"
)

// Weekdays lists schedule days in display order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ParseDate parses a YYYY-MM-DD date in the local time zone.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
	}
	return d, nil
}

// ParseClock validates an HH:MM time and returns it normalized.
func ParseClock(s string) (string, error) {
	t, err := time.Parse(ClockLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid time %q, use HH:MM (24-hour)", s)
	}
	return t.Format(ClockLayout), nil
}

// ClockBefore reports whether a is earlier than b; both must be HH:MM.
func ClockBefore(a, b string) bool {
	return a < b
}

// NormalizeWeekday returns the canonical weekday name, or false if s is not one.
func NormalizeWeekday(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, day := range Weekdays {
		if strings.EqualFold(day, s) {
			return day, true
		}
	}
	return "", false
}

// Today truncates now to midnight in the local time zone.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

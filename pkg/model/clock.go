package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout    = "2006-01-02"
	MinutesPerDay = 24 * 60
)

var ErrInvalidClock = errors.New("invalid time of day")

// ParseClock converts "HH:MM" or "HH:MM:SS" into minutes after midnight.
// "24:00" is accepted as the end of the day.
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	fields := make([]int, len(parts))
	for i, p := range parts {
		if len(p) != 2 || !isDigit(p[0]) || !isDigit(p[1]) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
		fields[i] = n
	}
	hour, minute := fields[0], fields[1]
	second := 0
	if len(fields) == 3 {
		second = fields[2]
	}
	if minute > 59 || second > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	total := hour*60 + minute
	if hour > 24 || total > MinutesPerDay || (hour == 24 && second != 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return total, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// FormatClock renders minutes after midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NormalizeClock rewrites a valid clock value to "HH:MM".
func NormalizeClock(s string) string {
	m, err := ParseClock(s)
	if err != nil {
		return s
	}
	return FormatClock(m)
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout, s, loc)
}

// Today returns the calendar date of now in loc, at midnight.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
}

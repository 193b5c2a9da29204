package utils

import (
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// StringToFloat parses query params such as lat/lng. ok is false for empty or
// malformed input.
func StringToFloat(str string) (float64, bool) {
	str = strings.TrimSpace(str)
	if str == "" {
		return 0, false
	}
	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// ParseDate reads a YYYY-MM-DD calendar date in UTC.
func ParseDate(str string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(str), time.UTC)
}

// TruncateDay drops the time-of-day part, keeping the calendar date in UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Package id handles reconciliation month keys like "2025-01".
package id

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatMonthKey returns a month key like "2025-01".
func FormatMonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// MonthKeyFor returns the month key containing t.
func MonthKeyFor(t time.Time) string {
	return FormatMonthKey(t.Year(), int(t.Month()))
}

// ParseMonthKey parses "2025-01" into year and month.
func ParseMonthKey(key string) (year, month int, err error) {
	parts := strings.SplitN(key, "-", 2)
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("invalid month key format: %q", key)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year in month key %q: %w", key, err)
	}

	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month in month key %q: %w", key, err)
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("month out of range in month key %q", key)
	}

	return year, month, nil
}

// MonthBounds returns the first and last day of a month key as
// canonical DD/MM/YYYY dates, for date-range queries.
func MonthBounds(key string) (first, last string, err error) {
	year, month, err := ParseMonthKey(key)
	if err != nil {
		return "", "", err
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	first = fmt.Sprintf("%02d/%02d/%04d", start.Day(), int(start.Month()), start.Year())
	last = fmt.Sprintf("%02d/%02d/%04d", end.Day(), int(end.Month()), end.Year())
	return first, last, nil
}

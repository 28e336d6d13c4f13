// Package dates converts the date representations found in bank exports
// (spreadsheet day-serials, ISO, UK slash dates, textual months) into one
// canonical DD/MM/YYYY string. Normalization is best-effort and never
// fails: a value nothing can interpret comes back as the trimmed raw
// string for a human to deal with downstream.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// serialEpoch is 1899-12-31: spreadsheet serial 1 is 1900-01-01.
var serialEpoch = time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC)

// leapBugCutoff is the last serial before the phantom 1900-02-29 that
// spreadsheet epochs count. Serials above it need a -1 day correction.
const leapBugCutoff = 59

var (
	isoPattern = regexp.MustCompile(`^(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})$`)
	ukPattern  = regexp.MustCompile(`^(\d{1,2})[-/.](\d{1,2})[-/.](\d{2}|\d{4})$`)
	// textual dates like "3 Mar 2024" or "14 September 24".
	textPattern = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]{3,})\s+(\d{2}|\d{4})$`)
)

var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// fallbackLayouts are tried last, after the explicit patterns. Ordered
// so unambiguous layouts come first.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2 January 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006/01/02",
}

// Normalize converts an arbitrary statement cell value to the canonical
// DD/MM/YYYY form. Numbers are treated as spreadsheet day-serials;
// strings go through the pattern strategies in NormalizeString. Values
// that resist every interpretation are returned as-is (trimmed), never
// an error.
func Normalize(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case float64:
		if s, ok := fromSerial(v); ok {
			return s
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return Normalize(float64(v))
	case int:
		return Normalize(float64(v))
	case int64:
		return Normalize(float64(v))
	case string:
		return NormalizeString(v)
	default:
		return NormalizeString(fmt.Sprint(value))
	}
}

// NormalizeString applies the interpretation strategies in order, first
// success wins: numeric serial, ISO, UK day-first, textual month,
// generic layouts, then the trimmed raw string unchanged.
func NormalizeString(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	// CSV hands us serials as bare numeric strings.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if out, ok := fromSerial(f); ok {
			return out
		}
		return s
	}

	if m := isoPattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if validDate(day, month, year) {
			return canonical(day, month, year)
		}
	}

	// Ambiguous numeric pairs (both parts <= 12) are always read
	// day-first. That is policy for UK bank exports, not detection.
	if m := ukPattern.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := expandYear(m[3])
		if validDate(day, month, year) {
			return canonical(day, month, year)
		}
	}

	if m := textPattern.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, ok := monthByName(m[2])
		year := expandYear(m[3])
		if ok && validDate(day, month, year) {
			return canonical(day, month, year)
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return canonical(t.Day(), int(t.Month()), t.Year())
		}
	}

	return s
}

// fromSerial converts a spreadsheet day-serial (days since the 1900
// epoch) to canonical form. Spreadsheets inherit Lotus 1-2-3's phantom
// 1900-02-29, so serials past the cutoff are pulled back one day.
// Fractional parts (time of day) are discarded.
func fromSerial(serial float64) (string, bool) {
	days := int(serial)
	if days <= 0 || days > 2958465 { // 2958465 = 9999-12-31
		return "", false
	}
	t := serialEpoch.AddDate(0, 0, days)
	if days > leapBugCutoff {
		t = t.AddDate(0, 0, -1)
	}
	return canonical(t.Day(), int(t.Month()), t.Year()), true
}

// expandYear maps two-digit years into 1900s when >= 50, else 2000s.
func expandYear(s string) int {
	year, _ := strconv.Atoi(s)
	if len(s) == 2 {
		if year >= 50 {
			return 1900 + year
		}
		return 2000 + year
	}
	return year
}

// monthByName resolves a month name of at least three letters against
// the English month table. "sep", "sept" and "september" all match.
func monthByName(name string) (int, bool) {
	n := strings.ToLower(name)
	if len(n) < 3 {
		return 0, false
	}
	for i, full := range monthNames {
		if strings.HasPrefix(full, n) {
			return i + 1, true
		}
	}
	return 0, false
}

func validDate(day, month, year int) bool {
	if year < 1 || month < 1 || month > 12 || day < 1 {
		return false
	}
	return day <= daysInMonth(month, year)
}

func daysInMonth(month, year int) int {
	switch month {
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 31
	}
}

func isLeapYear(year int) bool {
	switch {
	case year%400 == 0:
		return true
	case year%100 == 0:
		return false
	default:
		return year%4 == 0
	}
}

func canonical(day, month, year int) string {
	return fmt.Sprintf("%02d/%02d/%04d", day, month, year)
}

package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthKeyRoundTrip(t *testing.T) {
	key := FormatMonthKey(2025, 1)
	assert.Equal(t, "2025-01", key)

	year, month, err := ParseMonthKey(key)
	require.NoError(t, err)
	assert.Equal(t, 2025, year)
	assert.Equal(t, 1, month)
}

func TestMonthKeyFor(t *testing.T) {
	assert.Equal(t, "2024-12", MonthKeyFor(time.Date(2024, 12, 25, 10, 0, 0, 0, time.UTC)))
}

func TestParseMonthKey_Invalid(t *testing.T) {
	for _, key := range []string{"", "2025", "2025-13", "2025-00", "25-01", "2025-1", "abcd-ef"} {
		_, _, err := ParseMonthKey(key)
		assert.Error(t, err, key)
	}
}

func TestMonthBounds(t *testing.T) {
	first, last, err := MonthBounds("2024-02")
	require.NoError(t, err)
	assert.Equal(t, "01/02/2024", first)
	assert.Equal(t, "29/02/2024", last, "2024 is a leap year")

	first, last, err = MonthBounds("2025-02")
	require.NoError(t, err)
	assert.Equal(t, "01/02/2025", first)
	assert.Equal(t, "28/02/2025", last)
}

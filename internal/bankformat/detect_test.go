package bankformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    Format
	}{
		{
			name:    "in/out pair with details",
			headers: []string{"Date", "Details", "In", "Out"},
			want:    FormatSantander,
		},
		{
			name:    "santander money in/out",
			headers: []string{"Date", "Description", "Money In", "Money Out", "Balance"},
			want:    FormatSantander,
		},
		{
			name:    "transaction type with account name",
			headers: []string{"Transaction Date", "Transaction Type", "Account Name", "Amount"},
			want:    FormatLloyds,
		},
		{
			name:    "type with balance",
			headers: []string{"Date", "Type", "Description", "Amount", "Balance"},
			want:    FormatHSBC,
		},
		{
			name:    "unrelated headers",
			headers: []string{"When", "What", "How Much"},
			want:    FormatGeneric,
		},
		{
			name:    "empty header row",
			headers: nil,
			want:    FormatGeneric,
		},
		{
			name:    "case insensitive",
			headers: []string{"DATE", "DETAILS", "MONEY IN", "MONEY OUT"},
			want:    FormatSantander,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.headers))
		})
	}
}

func TestDetect_InOutBeatsBalance(t *testing.T) {
	// Both signatures present: the more specific in/out layout wins.
	headers := []string{"Date", "Type", "Details", "Paid In", "Paid Out", "Balance"}
	assert.Equal(t, FormatSantander, Detect(headers))
}

package bankformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestMapping_SplitAmount(t *testing.T) {
	headers := []string{"Date", "Details", "Money In", "Money Out", "Balance"}
	m := SuggestMapping(headers, FormatSantander)

	assert.Equal(t, "Date", m.Date)
	assert.Equal(t, "Details", m.Description)
	split, ok := m.Amount.(SplitAmount)
	require.True(t, ok, "expected a split amount mapping")
	assert.Equal(t, "Money In", split.In)
	assert.Equal(t, "Money Out", split.Out)
	require.NoError(t, m.Validate())
}

func TestSuggestMapping_BareInOut(t *testing.T) {
	m := SuggestMapping([]string{"Date", "Details", "In", "Out"}, FormatSantander)
	split, ok := m.Amount.(SplitAmount)
	require.True(t, ok)
	assert.Equal(t, "In", split.In)
	assert.Equal(t, "Out", split.Out)
}

func TestSuggestMapping_SingleAmount(t *testing.T) {
	headers := []string{"Date", "Type", "Description", "Amount", "Balance"}
	m := SuggestMapping(headers, FormatHSBC)

	assert.Equal(t, "Date", m.Date)
	assert.Equal(t, "Description", m.Description)
	assert.Equal(t, "Type", m.Type)
	single, ok := m.Amount.(SingleAmount)
	require.True(t, ok, "expected a single amount mapping")
	assert.Equal(t, "Amount", single.Column)
	require.NoError(t, m.Validate())
}

func TestSuggestMapping_MostSpecificSynonymWins(t *testing.T) {
	headers := []string{"Value Date", "Transaction Description", "Transaction Amount", "Reference"}
	m := SuggestMapping(headers, FormatGeneric)

	assert.Equal(t, "Value Date", m.Date)
	assert.Equal(t, "Transaction Description", m.Description)
	assert.Equal(t, "Reference", m.Reference)
	single, ok := m.Amount.(SingleAmount)
	require.True(t, ok)
	assert.Equal(t, "Transaction Amount", single.Column)
}

func TestSuggestMapping_PositionalFallback(t *testing.T) {
	headers := []string{"When", "What", "How Much"}
	m := SuggestMapping(headers, FormatGeneric)

	assert.Equal(t, "When", m.Date)
	assert.Equal(t, "What", m.Description)
	single, ok := m.Amount.(SingleAmount)
	require.True(t, ok)
	assert.Equal(t, "How Much", single.Column)
	require.NoError(t, m.Validate())
}

func TestSuggestMapping_HSBCSkipsSplitScan(t *testing.T) {
	// A stray "credit" header must not force a split mapping on a
	// single-amount layout.
	headers := []string{"Date", "Type", "Description", "Amount", "Credit Limit", "Balance"}
	m := SuggestMapping(headers, FormatHSBC)
	_, ok := m.Amount.(SingleAmount)
	assert.True(t, ok)
}

func TestColumnMapping_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mapping ColumnMapping
		wantErr string
	}{
		{
			name:    "no amount variant at all",
			mapping: ColumnMapping{Date: "Date", Description: "Details"},
			wantErr: "amount",
		},
		{
			name: "missing date",
			mapping: ColumnMapping{
				Description: "Details",
				Amount:      SingleAmount{Column: "Amount"},
			},
			wantErr: "date",
		},
		{
			name: "half a split pair",
			mapping: ColumnMapping{
				Date:        "Date",
				Description: "Details",
				Amount:      SplitAmount{In: "Money In"},
			},
			wantErr: "amountOut",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mapping.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMappingIncomplete)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestColumnMapping_OperatorOverride(t *testing.T) {
	// A suggested mapping is plain data; overriding a field and
	// re-validating is the whole override flow.
	m := SuggestMapping([]string{"Posted", "Narrative", "Value"}, FormatGeneric)
	m.Date = "Posted"
	m.Amount = SingleAmount{Column: "Value"}
	require.NoError(t, m.Validate())
}

package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Date,Description,Amount,Balance
01/02/2024,Gift Aid claim,250.00,1250.00
02/02/2024,"Hall hire, February",-80.00,1170.00
,,,
05/02/2024,Standing order,45.50,1215.50
`

func TestParseCSV_RoundTrip(t *testing.T) {
	header, rows, err := ParseCSV([]byte(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"Date", "Description", "Amount", "Balance"}, header)
	// Three non-empty data rows, in file order; the blank row dropped.
	require.Len(t, rows, 3)
	assert.Equal(t, 0, rows[0].Position)
	assert.Equal(t, 2, rows[2].Position)
	assert.Equal(t, "Gift Aid claim", rows[0].Get("Description"))
	assert.Equal(t, "Hall hire, February", rows[1].Get("Description"))
	assert.Equal(t, "45.50", rows[2].Get("Amount"))
}

func TestParseCSV_ValuesStayStrings(t *testing.T) {
	_, rows, err := ParseCSV([]byte("Date,Amount\n45000,0012.50\n"))
	require.NoError(t, err)
	// No coercion at parse time: serials and zero-padded numbers
	// survive verbatim for the normalizer.
	assert.Equal(t, "45000", rows[0].Get("Date"))
	assert.Equal(t, "0012.50", rows[0].Get("Amount"))
}

func TestParseCSV_NoRows(t *testing.T) {
	_, _, err := ParseCSV([]byte("Date,Description,Amount\n,,\n , , \n"))
	assert.ErrorIs(t, err, ErrNoRows)

	_, _, err = ParseCSV([]byte(""))
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestParseCSV_MalformedRow(t *testing.T) {
	_, _, err := ParseCSV([]byte("Date,Description,Amount\n01/02/2024,too,many,fields\n"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoRows)
	assert.Contains(t, err.Error(), "line")
}

func TestParseCSV_BOMStripped(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Date,Amount\n01/02/2024,5.00\n")...)
	header, rows, err := ParseCSV(data)
	require.NoError(t, err)
	assert.Equal(t, "Date", header[0])
	require.Len(t, rows, 1)
}

func TestParseCSV_Latin1Fallback(t *testing.T) {
	// 0xE9 is é in Latin-1 and invalid on its own in UTF-8.
	data := []byte("Date,Description,Amount\n01/02/2024,Caf\xe9 takings,12.00\n")
	_, rows, err := ParseCSV(data)
	require.NoError(t, err)
	assert.Equal(t, "Café takings", rows[0].Get("Description"))
}

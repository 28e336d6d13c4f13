package statement

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/stewardbooks/steward/internal/model"
)

// ParseXLSX parses the first sheet of a spreadsheet export into header
// names and ParsedRows, the same shape ParseCSV produces. Cells are read
// raw, so date cells arrive as day-serial strings and take the serial
// path through the date normalizer.
func ParseXLSX(r io.Reader) ([]string, []model.ParsedRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("opening spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, ErrNoRows
	}

	records, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(records) == 0 {
		return nil, nil, ErrNoRows
	}

	header := records[0]
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	rest := records[1:]
	i := 0
	rows, err := collectRows(header, func() ([]string, error) {
		if i >= len(rest) {
			return nil, io.EOF
		}
		rec := rest[i]
		i++
		return rec, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return header, rows, nil
}

// ParseXLSXBytes is ParseXLSX over an in-memory file.
func ParseXLSXBytes(data []byte) ([]string, []model.ParsedRow, error) {
	return ParseXLSX(bytes.NewReader(data))
}

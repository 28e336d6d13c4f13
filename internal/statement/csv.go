// Package statement turns uploaded bank export files into ParsedRows and
// then, via a column mapping, into normalized BankRows. Cell values stay
// raw strings through parsing; dates and amounts are interpreted only in
// the normalization step so the date and amount logic stay authoritative.
package statement

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/stewardbooks/steward/internal/model"
)

// ErrNoRows means the file parsed but produced zero usable data rows.
// Distinct from a syntactic parse error.
var ErrNoRows = errors.New("no rows detected in statement")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV parses raw statement text into header names and ParsedRows.
// All-empty rows are dropped; the first malformed line is the error.
func ParseCSV(data []byte) ([]string, []model.ParsedRow, error) {
	text, err := decode(data)
	if err != nil {
		return nil, nil, err
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, ErrNoRows
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading statement header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	rows, err := collectRows(header, func() ([]string, error) { return cr.Read() })
	if err != nil {
		return nil, nil, err
	}
	return header, rows, nil
}

// Parse reads and parses a whole CSV stream.
func Parse(r io.Reader) ([]string, []model.ParsedRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("reading statement: %w", err)
	}
	return ParseCSV(data)
}

// collectRows assembles ParsedRows from a record source until EOF,
// dropping rows whose every cell is blank.
func collectRows(header []string, next func() ([]string, error)) ([]model.ParsedRow, error) {
	var rows []model.ParsedRow
	pos := 0
	for line := 2; ; line++ {
		rec, err := next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("statement line %d: %w", line, err)
		}
		if allBlank(rec) {
			continue
		}
		cells := make(map[string]string, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(rec) {
				cells[h] = strings.TrimSpace(rec[i])
			}
		}
		rows = append(rows, model.ParsedRow{Position: pos, Cells: cells})
		pos++
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows, nil
}

func allBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// decode strips a UTF-8 BOM and falls back to Latin-1 for the older
// bank exports that are not valid UTF-8.
func decode(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decoding statement text: %w", err)
	}
	return string(out), nil
}

package bankformat

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMappingIncomplete means required fields are unset; an import must
// not proceed until the operator fills them in.
var ErrMappingIncomplete = errors.New("column mapping incomplete")

// AmountColumns is the tagged amount variant of a mapping: exports carry
// either one signed amount column or a split in/out pair, never both.
type AmountColumns interface {
	amountColumns()
}

// SingleAmount maps one signed amount column.
type SingleAmount struct {
	Column string
}

// SplitAmount maps separate money-in and money-out columns.
type SplitAmount struct {
	In  string
	Out string
}

func (SingleAmount) amountColumns() {}
func (SplitAmount) amountColumns()  {}

// ColumnMapping names the source column for each canonical field. A
// suggested mapping is always provisional; the operator may override any
// field before rows are committed.
type ColumnMapping struct {
	Date        string
	Description string
	Reference   string // optional
	Type        string // optional
	Amount      AmountColumns
}

// Validate checks the required fields: date, description, and a fully
// specified amount variant.
func (m ColumnMapping) Validate() error {
	var missing []string
	if m.Date == "" {
		missing = append(missing, "date")
	}
	if m.Description == "" {
		missing = append(missing, "description")
	}
	switch a := m.Amount.(type) {
	case SingleAmount:
		if a.Column == "" {
			missing = append(missing, "amount")
		}
	case SplitAmount:
		if a.In == "" {
			missing = append(missing, "amountIn")
		}
		if a.Out == "" {
			missing = append(missing, "amountOut")
		}
	default:
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMappingIncomplete, strings.Join(missing, ", "))
	}
	return nil
}

// fieldCandidates pairs a canonical field with its header synonyms,
// most specific first. The scan takes the first header containing a
// candidate as a substring. Priority lives here, not in conditionals.
type fieldCandidates struct {
	field      string
	candidates []string
}

var (
	dateCandidates = fieldCandidates{"date", []string{
		"transaction date", "date posted", "value date", "date",
	}}
	descriptionCandidates = fieldCandidates{"description", []string{
		"transaction description", "description", "details", "narrative", "memo",
	}}
	amountInCandidates = fieldCandidates{"amountIn", []string{
		"money in", "paid in", "credit amount", "credit",
	}}
	amountOutCandidates = fieldCandidates{"amountOut", []string{
		"money out", "paid out", "debit amount", "debit",
	}}
	amountCandidates = fieldCandidates{"amount", []string{
		"transaction amount", "amount", "value",
	}}
	referenceCandidates = fieldCandidates{"reference", []string{
		"reference", "cheque number", "ref",
	}}
	typeCandidates = fieldCandidates{"type", []string{
		"transaction type", "type",
	}}
)

// SuggestMapping proposes a default ColumnMapping for a header row.
// Fields fall back to positional defaults (1st/2nd/3rd header) when no
// candidate matches. The detected format steers only the amount shape:
// single-amount layouts skip the in/out scan so a stray "credit" header
// cannot force a split mapping.
func SuggestMapping(headers []string, format Format) ColumnMapping {
	m := ColumnMapping{
		Date:        scanHeaders(headers, dateCandidates),
		Description: scanHeaders(headers, descriptionCandidates),
		Reference:   scanHeaders(headers, referenceCandidates),
		Type:        scanHeaders(headers, typeCandidates),
	}

	if m.Date == "" && len(headers) > 0 {
		m.Date = headers[0]
	}
	if m.Description == "" && len(headers) > 1 {
		m.Description = headers[1]
	}

	if format != FormatHSBC {
		in := scanSplitHeader(headers, amountInCandidates)
		out := scanSplitHeader(headers, amountOutCandidates)
		if in != "" && out != "" {
			m.Amount = SplitAmount{In: in, Out: out}
			return m
		}
	}

	amount := scanHeaders(headers, amountCandidates)
	if amount == "" && len(headers) > 2 {
		amount = headers[2]
	}
	m.Amount = SingleAmount{Column: amount}
	return m
}

// scanHeaders returns the first header containing one of the field's
// candidates, case-insensitively. Candidates are tried in order so the
// most specific synonym wins across the whole header row.
func scanHeaders(headers []string, fc fieldCandidates) string {
	for _, c := range fc.candidates {
		for _, h := range headers {
			if strings.Contains(strings.ToLower(strings.TrimSpace(h)), c) {
				return h
			}
		}
	}
	return ""
}

// scanSplitHeader is scanHeaders plus bare "in"/"out" exact matches,
// which are too short to use as substrings.
func scanSplitHeader(headers []string, fc fieldCandidates) string {
	if h := scanHeaders(headers, fc); h != "" {
		return h
	}
	bare := "in"
	if fc.field == "amountOut" {
		bare = "out"
	}
	for _, h := range headers {
		if strings.ToLower(strings.TrimSpace(h)) == bare {
			return h
		}
	}
	return ""
}

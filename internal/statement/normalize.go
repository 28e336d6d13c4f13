package statement

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/stewardbooks/steward/internal/bankformat"
	"github.com/stewardbooks/steward/internal/dates"
	"github.com/stewardbooks/steward/internal/model"
)

// NormalizeRows applies a column mapping to parsed rows, producing
// BankRows with canonical dates and signed amounts (money in positive,
// money out negative). The mapping must validate; a row whose amount
// cell cannot be parsed fails the whole batch so nothing is committed
// from a bad file.
func NormalizeRows(parsed []model.ParsedRow, m bankformat.ColumnMapping) ([]model.BankRow, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	rows := make([]model.BankRow, 0, len(parsed))
	for _, pr := range parsed {
		amount, err := rowAmount(pr, m.Amount)
		if err != nil {
			return nil, fmt.Errorf("statement row %d: %w", pr.Position+1, err)
		}
		row := model.BankRow{
			Position:    pr.Position,
			Date:        dates.NormalizeString(pr.Get(m.Date)),
			Description: pr.Get(m.Description),
			Amount:      amount,
		}
		if m.Reference != "" {
			row.Reference = pr.Get(m.Reference)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// rowAmount resolves the amount for one row under either mapping shape.
// For split columns, money out wins when both are populated and comes
// back negative regardless of how the bank signed it.
func rowAmount(pr model.ParsedRow, ac bankformat.AmountColumns) (decimal.Decimal, error) {
	switch a := ac.(type) {
	case bankformat.SingleAmount:
		return ParseAmount(pr.Get(a.Column))
	case bankformat.SplitAmount:
		if out := pr.Get(a.Out); out != "" {
			v, err := ParseAmount(out)
			if err != nil {
				return decimal.Zero, err
			}
			return v.Abs().Neg(), nil
		}
		if in := pr.Get(a.In); in != "" {
			v, err := ParseAmount(in)
			if err != nil {
				return decimal.Zero, err
			}
			return v.Abs(), nil
		}
		return decimal.Zero, nil
	default:
		return decimal.Zero, fmt.Errorf("no amount columns mapped")
	}
}

// ParseAmount parses a statement money cell: currency symbols and
// thousands separators are stripped, a parenthesized value is negative.
// An empty cell is zero.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, nil
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, strings.ReplaceAll(s, ",", ""))

	if cleaned == "" || cleaned == "-" {
		return decimal.Zero, fmt.Errorf("parsing amount %q: no numeric value", raw)
	}

	v, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", raw, err)
	}
	if negative {
		v = v.Neg()
	}
	return v, nil
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParsedRow is one data row of an uploaded statement, keyed by header
// name. Cell values stay raw strings; interpretation (dates, amounts)
// happens downstream. Position preserves file order for audit purposes.
// ParsedRows exist only during an import and are never persisted.
type ParsedRow struct {
	Position int
	Cells    map[string]string
}

// Get returns the trimmed cell value for a header, or "".
func (r ParsedRow) Get(header string) string {
	return r.Cells[header]
}

// BankRow is a normalized statement row: canonical date, signed amount
// (money in positive, money out negative). Rows are persisted under an
// import batch so confirmed matches can reference them.
type BankRow struct {
	ID          string
	ImportID    string
	ChurchID    string
	Position    int
	Date        string // canonical DD/MM/YYYY
	Description string
	Amount      decimal.Decimal
	Reference   string
}

// ImportBatch groups the bank rows of one uploaded statement file.
type ImportBatch struct {
	ID        string
	ChurchID  string
	FileName  string
	Format    string // detected bank format name
	RowCount  int
	CreatedAt time.Time
}

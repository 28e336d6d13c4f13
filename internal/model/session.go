package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionStatus is the lifecycle state of a reconciliation session.
// Completed is terminal; there is no reopen.
type SessionStatus string

const (
	SessionOpen       SessionStatus = "open"
	SessionInProgress SessionStatus = "in-progress"
	SessionCompleted  SessionStatus = "completed"
)

// ReconciliationSession compares a bank statement balance against the
// ledger for one church and month, ending in a frozen report.
type ReconciliationSession struct {
	ID            string
	ChurchID      string
	Month         string // month key, "2025-01"
	Status        SessionStatus
	BankBalance   decimal.Decimal
	LedgerBalance decimal.Decimal
	PendingTotal  decimal.Decimal
	Variance      decimal.Decimal
	Adjustments   decimal.Decimal
	Notes         string
	StartedAt     time.Time
	ClosedAt      *time.Time
}

// ReconciliationMatch is the audit record of one operator-confirmed
// bank-row/transaction pairing.
type ReconciliationMatch struct {
	ID            string
	SessionID     string
	BankRowID     string
	TransactionID string
	Confidence    decimal.Decimal
	CreatedAt     time.Time
}

// ReportSnapshot freezes a reconciliation report at session close so
// later edits to transactions never change a closed report. Payload is
// the JSON-encoded report.
type ReportSnapshot struct {
	ID          string
	ChurchID    string
	SessionID   string
	Type        string // "reconciliation"
	GeneratedAt time.Time
	Params      string
	Payload     []byte
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies ledger transactions.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// LedgerTransaction is a persisted ledger record for a church. The
// reconciliation engine reads these and flips Reconciled; everything else
// about them is owned by the ledger subsystem.
type LedgerTransaction struct {
	ID          string
	ChurchID    string
	Date        string // canonical DD/MM/YYYY
	Description string
	Amount      decimal.Decimal // always positive; Type carries the direction
	Type        TransactionType
	Reference   string
	FundID      string
	Reconciled  bool
	CreatedAt   time.Time
}

// Signed returns the amount with income positive and expense negative.
func (t LedgerTransaction) Signed() decimal.Decimal {
	if t.Type == TypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// PendingTransaction links a ledger transaction to an unresolved clearing
// state: money recorded in the ledger but not yet in the bank's cleared
// balance (an uncashed cheque, an uncleared transfer). ResolvedAt unset
// means still pending.
type PendingTransaction struct {
	ID            string
	ChurchID      string
	TransactionID string
	CreatedAt     time.Time
	ResolvedAt    *time.Time
}

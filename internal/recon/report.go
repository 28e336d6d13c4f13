package recon

import (
	"github.com/shopspring/decimal"

	"github.com/stewardbooks/steward/internal/model"
)

// Report is the full reconciliation report: live for open sessions,
// frozen in a snapshot at close. Both paths go through buildReport so
// they cannot drift.
type Report struct {
	Session             model.ReconciliationSession `json:"session"`
	PendingTotal        decimal.Decimal             `json:"pendingTotal"`
	Pending             []model.PendingTransaction  `json:"pending"`
	PendingTransactions []model.LedgerTransaction   `json:"pendingTransactions"`
	Unreconciled        []model.LedgerTransaction   `json:"unreconciled"`
	UnreconciledTotal   decimal.Decimal             `json:"unreconciledTotal"`
	Variance            decimal.Decimal             `json:"variance"`
	Adjustments         decimal.Decimal             `json:"adjustments"`
	Notes               string                      `json:"notes"`
}

// The two totals below deliberately use opposite sign conventions; both
// are preserved from observed product behavior and must not be "fixed"
// to agree without product sign-off.

// pendingImpact sums sign x amount over still-pending transactions with
// income negative and expense positive: pending income reduces the
// adjustment needed against the bank balance, pending expense increases
// it.
func pendingImpact(txns []model.LedgerTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range txns {
		if txn.Type == model.TypeIncome {
			total = total.Sub(txn.Amount)
		} else {
			total = total.Add(txn.Amount)
		}
	}
	return total
}

// unreconciledTotal sums sign x amount over unreconciled transactions
// with income positive and expense negative. Informational only.
func unreconciledTotal(txns []model.LedgerTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range txns {
		if txn.Type == model.TypeIncome {
			total = total.Add(txn.Amount)
		} else {
			total = total.Sub(txn.Amount)
		}
	}
	return total
}

// computeVariance is the reconciliation invariant:
// bank − (ledger + adjustments − pendingTotal).
func computeVariance(bank, ledger, adjustments, pendingTotal decimal.Decimal) decimal.Decimal {
	adjustedLedger := ledger.Add(adjustments).Sub(pendingTotal)
	return bank.Sub(adjustedLedger)
}

// buildReport assembles a Report from already-fetched data. Pure: the
// live path and the close path both call it with their own inputs.
func buildReport(
	sess model.ReconciliationSession,
	pending []model.PendingTransaction,
	pendingTxns []model.LedgerTransaction,
	pendingTotal decimal.Decimal,
	unreconciled []model.LedgerTransaction,
	variance decimal.Decimal,
) Report {
	return Report{
		Session:             sess,
		PendingTotal:        pendingTotal,
		Pending:             pending,
		PendingTransactions: pendingTxns,
		Unreconciled:        unreconciled,
		UnreconciledTotal:   unreconciledTotal(unreconciled),
		Variance:            variance,
		Adjustments:         sess.Adjustments,
		Notes:               sess.Notes,
	}
}

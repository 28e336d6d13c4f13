// Package recon implements the reconciliation engine: confidence-scored
// match suggestions between imported bank rows and ledger transactions,
// and the session state machine that turns confirmed matches into a
// closed, snapshotted variance report.
package recon

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/stewardbooks/steward/internal/model"
)

// maxSuggestions bounds the globally ranked suggestion list handed to
// the operator, regardless of ledger size.
const maxSuggestions = 100

var (
	one            = decimal.NewFromInt(1)
	referenceBoost = decimal.RequireFromString("0.3")
)

// Suggestion is one ranked candidate pairing. Suggestions are advisory:
// nothing is mutated until the operator confirms one.
type Suggestion struct {
	BankRowID     string          `json:"bankRowId"`
	TransactionID string          `json:"transactionId"`
	Confidence    decimal.Decimal `json:"confidence"`
}

// ScoreCandidates ranks every (bank row, transaction) pair sharing an
// exactly equal canonical date. A date mismatch disqualifies a pair
// outright; there is no fuzzy date matching. Results are sorted by
// descending confidence and truncated to the top 100 overall.
func ScoreCandidates(rows []model.BankRow, txns []model.LedgerTransaction) []Suggestion {
	byDate := make(map[string][]model.LedgerTransaction)
	for _, txn := range txns {
		byDate[txn.Date] = append(byDate[txn.Date], txn)
	}

	var out []Suggestion
	for _, row := range rows {
		for _, txn := range byDate[row.Date] {
			out = append(out, Suggestion{
				BankRowID:     row.ID,
				TransactionID: txn.ID,
				Confidence:    Confidence(txn, row),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence.GreaterThan(out[j].Confidence)
	})
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

// Confidence scores one candidate pair in [0, 1]: how far apart the
// absolute amounts are relative to the transaction amount, plus a fixed
// boost when both sides carry the same reference.
func Confidence(txn model.LedgerTransaction, row model.BankRow) decimal.Decimal {
	delta := txn.Amount.Abs().Sub(row.Amount.Abs()).Abs()
	denom := decimal.Max(one, txn.Amount.Abs())
	score := one.Sub(delta.Div(denom))
	if score.IsNegative() {
		score = decimal.Zero
	}
	if referencesMatch(txn.Reference, row.Reference) {
		score = decimal.Min(one, score.Add(referenceBoost))
	}
	return score
}

func referencesMatch(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && b != "" && strings.EqualFold(a, b)
}

package recon

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stewardbooks/steward/internal/model"
	"github.com/stewardbooks/steward/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "steward.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return NewService(st, nil), st
}

func insertTxn(t *testing.T, st *store.Store, churchID, date, desc string, amount int64, typ model.TransactionType) model.LedgerTransaction {
	t.Helper()
	txn := model.LedgerTransaction{
		ChurchID:    churchID,
		Date:        date,
		Description: desc,
		Amount:      decimal.NewFromInt(amount),
		Type:        typ,
	}
	require.NoError(t, st.InsertTransaction(context.Background(), &txn))
	return txn
}

func TestStartSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx, StartParams{
		ChurchID:      "stmary",
		Month:         "2025-01",
		BankBalance:   decimal.NewFromInt(1000),
		LedgerBalance: decimal.NewFromInt(950),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, model.SessionInProgress, sess.Status)
	assert.True(t, sess.Variance.Equal(decimal.NewFromInt(50)), "got %s", sess.Variance)
	assert.Nil(t, sess.ClosedAt)
}

func TestStartSessionRejectsBadMonthKey(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.StartSession(context.Background(), StartParams{
		ChurchID: "stmary",
		Month:    "January 2025",
	})
	assert.Error(t, err)
}

func TestConfirmMatchMarksReconciled(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	txn := insertTxn(t, st, "stmary", "15/01/2025", "Electric bill", 80, model.TypeExpense)
	batch := model.ImportBatch{ChurchID: "stmary", FileName: "jan.csv", Format: "generic"}
	rows := []model.BankRow{{Position: 1, Date: "15/01/2025", Description: "ELECTRIC", Amount: decimal.NewFromInt(-80)}}
	require.NoError(t, st.WithTx(ctx, func(tx *store.Store) error {
		return tx.InsertImport(ctx, &batch, rows)
	}))

	sess, err := svc.StartSession(ctx, StartParams{ChurchID: "stmary", Month: "2025-01"})
	require.NoError(t, err)

	match, err := svc.ConfirmMatch(ctx, ConfirmParams{
		SessionID:     sess.ID,
		BankRowID:     rows[0].ID,
		TransactionID: txn.ID,
		Confidence:    decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, match.ID)

	got, err := st.GetTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.True(t, got.Reconciled)

	unrec, err := st.TransactionsByReconciled(ctx, "stmary", false)
	require.NoError(t, err)
	assert.Empty(t, unrec)
}

func TestConfirmMatchRejectsOtherChurch(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	txn := insertTxn(t, st, "stjohn", "15/01/2025", "Not ours", 80, model.TypeExpense)
	batch := model.ImportBatch{ChurchID: "stmary", FileName: "jan.csv", Format: "generic"}
	rows := []model.BankRow{{Position: 1, Date: "15/01/2025", Description: "X", Amount: decimal.NewFromInt(-80)}}
	require.NoError(t, st.WithTx(ctx, func(tx *store.Store) error {
		return tx.InsertImport(ctx, &batch, rows)
	}))

	sess, err := svc.StartSession(ctx, StartParams{ChurchID: "stmary", Month: "2025-01"})
	require.NoError(t, err)

	_, err = svc.ConfirmMatch(ctx, ConfirmParams{
		SessionID:     sess.ID,
		BankRowID:     rows[0].ID,
		TransactionID: txn.ID,
	})
	assert.Error(t, err)

	// Rolled back: the transaction stays unreconciled.
	got, err := st.GetTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.False(t, got.Reconciled)
}

func TestSuggestMatchesSkipsReconciled(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	matched := insertTxn(t, st, "stmary", "15/01/2025", "matched", 80, model.TypeExpense)
	insertTxn(t, st, "stmary", "15/01/2025", "open", 75, model.TypeExpense)
	require.NoError(t, st.MarkTransactionReconciled(ctx, matched.ID, true))

	batch := model.ImportBatch{ChurchID: "stmary", FileName: "jan.csv", Format: "generic"}
	rows := []model.BankRow{{Position: 1, Date: "15/01/2025", Description: "X", Amount: decimal.NewFromInt(-80)}}
	require.NoError(t, st.WithTx(ctx, func(tx *store.Store) error {
		return tx.InsertImport(ctx, &batch, rows)
	}))

	got, err := svc.SuggestMatches(ctx, "stmary", batch.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotEqual(t, matched.ID, got[0].TransactionID)
}

func TestCloseComputesPendingAndVariance(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	// Bank says 1000, ledger says 950, with a 50 expense cheque not yet
	// cleared. The pending expense explains the whole gap twice over:
	// variance = 1000 - (950 + 0 - 50) = 100.
	cheque := insertTxn(t, st, "stmary", "20/01/2025", "Cheque to roofer", 50, model.TypeExpense)
	pending := model.PendingTransaction{ChurchID: "stmary", TransactionID: cheque.ID}
	require.NoError(t, st.InsertPending(ctx, &pending))

	sess, err := svc.StartSession(ctx, StartParams{
		ChurchID:      "stmary",
		Month:         "2025-01",
		BankBalance:   decimal.NewFromInt(1000),
		LedgerBalance: decimal.NewFromInt(950),
	})
	require.NoError(t, err)

	report, err := svc.Close(ctx, CloseParams{SessionID: sess.ID, Notes: "January close"})
	require.NoError(t, err)

	assert.True(t, report.PendingTotal.Equal(decimal.NewFromInt(50)), "got %s", report.PendingTotal)
	assert.True(t, report.Variance.Equal(decimal.NewFromInt(100)), "got %s", report.Variance)
	assert.Equal(t, "January close", report.Notes)
	assert.Equal(t, model.SessionCompleted, report.Session.Status)
	require.NotNil(t, report.Session.ClosedAt)

	stored, err := st.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionCompleted, stored.Status)
	assert.True(t, stored.PendingTotal.Equal(decimal.NewFromInt(50)))
}

func TestClosePendingIncomeReducesTotal(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	gift := insertTxn(t, st, "stmary", "20/01/2025", "Pledged gift", 30, model.TypeIncome)
	pending := model.PendingTransaction{ChurchID: "stmary", TransactionID: gift.ID}
	require.NoError(t, st.InsertPending(ctx, &pending))

	sess, err := svc.StartSession(ctx, StartParams{
		ChurchID:      "stmary",
		Month:         "2025-01",
		BankBalance:   decimal.NewFromInt(500),
		LedgerBalance: decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	report, err := svc.Close(ctx, CloseParams{SessionID: sess.ID})
	require.NoError(t, err)

	// Pending income carries a negative sign, so the adjusted ledger
	// rises and the variance goes negative: 500 - (500 - (-30)) = -30.
	assert.True(t, report.PendingTotal.Equal(decimal.NewFromInt(-30)), "got %s", report.PendingTotal)
	assert.True(t, report.Variance.Equal(decimal.NewFromInt(-30)), "got %s", report.Variance)
}

func TestCloseFoldsAdjustments(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx, StartParams{
		ChurchID:      "stmary",
		Month:         "2025-02",
		BankBalance:   decimal.NewFromInt(1000),
		LedgerBalance: decimal.NewFromInt(975),
	})
	require.NoError(t, err)

	report, err := svc.Close(ctx, CloseParams{
		SessionID:   sess.ID,
		Adjustments: decimal.NewFromInt(25),
	})
	require.NoError(t, err)
	assert.True(t, report.Variance.IsZero(), "got %s", report.Variance)

	stored, err := st.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, stored.LedgerBalance.Equal(decimal.NewFromInt(1000)))
	assert.True(t, stored.Adjustments.Equal(decimal.NewFromInt(25)))
}

func TestCompletedSessionIsTerminal(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	txn := insertTxn(t, st, "stmary", "15/01/2025", "late arrival", 10, model.TypeExpense)
	batch := model.ImportBatch{ChurchID: "stmary", FileName: "jan.csv", Format: "generic"}
	rows := []model.BankRow{{Position: 1, Date: "15/01/2025", Description: "X", Amount: decimal.NewFromInt(-10)}}
	require.NoError(t, st.WithTx(ctx, func(tx *store.Store) error {
		return tx.InsertImport(ctx, &batch, rows)
	}))

	sess, err := svc.StartSession(ctx, StartParams{ChurchID: "stmary", Month: "2025-01"})
	require.NoError(t, err)
	_, err = svc.Close(ctx, CloseParams{SessionID: sess.ID})
	require.NoError(t, err)

	_, err = svc.Close(ctx, CloseParams{SessionID: sess.ID})
	assert.ErrorIs(t, err, ErrSessionCompleted)

	_, err = svc.ConfirmMatch(ctx, ConfirmParams{
		SessionID:     sess.ID,
		BankRowID:     rows[0].ID,
		TransactionID: txn.ID,
	})
	assert.ErrorIs(t, err, ErrSessionCompleted)

	notes := "too late"
	_, err = svc.UpdateProgress(ctx, UpdateParams{SessionID: sess.ID, Notes: &notes})
	assert.ErrorIs(t, err, ErrSessionCompleted)
}

func TestUpdateProgressCannotComplete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx, StartParams{ChurchID: "stmary", Month: "2025-01"})
	require.NoError(t, err)

	done := model.SessionCompleted
	_, err = svc.UpdateProgress(ctx, UpdateParams{SessionID: sess.ID, Status: &done})
	assert.Error(t, err)
}

func TestGetReportFrozenAfterClose(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	insertTxn(t, st, "stmary", "15/01/2025", "unmatched", 40, model.TypeExpense)

	sess, err := svc.StartSession(ctx, StartParams{
		ChurchID:      "stmary",
		Month:         "2025-01",
		BankBalance:   decimal.NewFromInt(300),
		LedgerBalance: decimal.NewFromInt(300),
	})
	require.NoError(t, err)

	closed, err := svc.Close(ctx, CloseParams{SessionID: sess.ID})
	require.NoError(t, err)
	require.Len(t, closed.Unreconciled, 1)

	// New ledger activity after close must not leak into the report.
	insertTxn(t, st, "stmary", "28/01/2025", "after close", 99, model.TypeIncome)

	report, err := svc.GetReport(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, report.Unreconciled, 1)
	assert.True(t, report.Variance.Equal(closed.Variance))
	assert.True(t, report.UnreconciledTotal.Equal(closed.UnreconciledTotal))
}

func TestGetReportLiveWhileOpen(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx, StartParams{
		ChurchID:      "stmary",
		Month:         "2025-01",
		BankBalance:   decimal.NewFromInt(100),
		LedgerBalance: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	report, err := svc.GetReport(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, report.Unreconciled)

	insertTxn(t, st, "stmary", "10/01/2025", "fresh", 20, model.TypeIncome)

	report, err = svc.GetReport(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, report.Unreconciled, 1)
	assert.True(t, report.UnreconciledTotal.Equal(decimal.NewFromInt(20)))
}

func TestUnreconciledTotalSigns(t *testing.T) {
	txns := []model.LedgerTransaction{
		{Amount: decimal.NewFromInt(100), Type: model.TypeIncome},
		{Amount: decimal.NewFromInt(30), Type: model.TypeExpense},
	}
	assert.True(t, unreconciledTotal(txns).Equal(decimal.NewFromInt(70)))

	pend := pendingImpact(txns)
	assert.True(t, pend.Equal(decimal.NewFromInt(-70)))
}

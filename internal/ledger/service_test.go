package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stewardbooks/steward/internal/funds"
	"github.com/stewardbooks/steward/internal/model"
	"github.com/stewardbooks/steward/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "steward.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	checker := funds.NewService([]model.Fund{
		{ID: "general", ChurchID: "stmary", Name: "General Fund", Type: model.FundGeneral},
		{ID: "roof", ChurchID: "stjohn", Name: "Roof Appeal", Type: model.FundRestricted},
	})
	return NewService(st, checker, nil), st
}

func TestAddNormalizesDate(t *testing.T) {
	svc, _ := newTestService(t)

	txn, err := svc.Add(context.Background(), AddParams{
		ChurchID:    "stmary",
		Date:        "2025-01-15",
		Description: "Hall hire",
		Amount:      decimal.RequireFromString("120.50"),
		Type:        model.TypeIncome,
		FundID:      "general",
	})
	require.NoError(t, err)
	assert.Equal(t, "15/01/2025", txn.Date)
	assert.NotEmpty(t, txn.ID)
}

func TestAddValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		params AddParams
	}{
		{
			name: "negative amount",
			params: AddParams{
				ChurchID: "stmary", Date: "15/01/2025", Description: "x",
				Amount: decimal.NewFromInt(-5), Type: model.TypeExpense,
			},
		},
		{
			name: "zero amount",
			params: AddParams{
				ChurchID: "stmary", Date: "15/01/2025", Description: "x",
				Amount: decimal.Zero, Type: model.TypeExpense,
			},
		},
		{
			name: "unknown type",
			params: AddParams{
				ChurchID: "stmary", Date: "15/01/2025", Description: "x",
				Amount: decimal.NewFromInt(5), Type: "transfer",
			},
		},
		{
			name: "missing description",
			params: AddParams{
				ChurchID: "stmary", Date: "15/01/2025",
				Amount: decimal.NewFromInt(5), Type: model.TypeExpense,
			},
		},
		{
			name: "fund owned by another church",
			params: AddParams{
				ChurchID: "stmary", Date: "15/01/2025", Description: "x",
				Amount: decimal.NewFromInt(5), Type: model.TypeExpense, FundID: "roof",
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Add(ctx, tc.params)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	// Nothing landed in the store.
	txns, err := svc.List(ctx, "stmary")
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestByMonth(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, date := range []string{"31/12/2024", "15/01/2025", "01/02/2025"} {
		_, err := svc.Add(ctx, AddParams{
			ChurchID: "stmary", Date: date, Description: date,
			Amount: decimal.NewFromInt(1), Type: model.TypeExpense,
		})
		require.NoError(t, err)
	}

	got, err := svc.ByMonth(ctx, "stmary", "2025-01")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "15/01/2025", got[0].Date)
}

func TestPendingLifecycle(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	txn, err := svc.Add(ctx, AddParams{
		ChurchID: "stmary", Date: "20/01/2025", Description: "Cheque",
		Amount: decimal.NewFromInt(50), Type: model.TypeExpense,
	})
	require.NoError(t, err)

	pending, err := svc.MarkPending(ctx, "stmary", txn.ID)
	require.NoError(t, err)
	assert.Equal(t, txn.ID, pending.TransactionID)

	open, err := st.UnresolvedPendingByChurch(ctx, "stmary")
	require.NoError(t, err)
	require.Len(t, open, 1)

	require.NoError(t, svc.ResolvePending(ctx, pending.ID))

	open, err = st.UnresolvedPendingByChurch(ctx, "stmary")
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestMarkPendingRejectsOtherChurch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	txn, err := svc.Add(ctx, AddParams{
		ChurchID: "stmary", Date: "20/01/2025", Description: "Cheque",
		Amount: decimal.NewFromInt(50), Type: model.TypeExpense,
	})
	require.NoError(t, err)

	_, err = svc.MarkPending(ctx, "stjohn", txn.ID)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUnreconciledExcludesMatched(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	a, err := svc.Add(ctx, AddParams{
		ChurchID: "stmary", Date: "05/03/2025", Description: "a",
		Amount: decimal.NewFromInt(5), Type: model.TypeIncome,
	})
	require.NoError(t, err)
	b, err := svc.Add(ctx, AddParams{
		ChurchID: "stmary", Date: "06/03/2025", Description: "b",
		Amount: decimal.NewFromInt(6), Type: model.TypeIncome,
	})
	require.NoError(t, err)

	require.NoError(t, st.MarkTransactionReconciled(ctx, a.ID, true))

	got, err := svc.Unreconciled(ctx, "stmary")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)
}

// Package ledger provides the transaction-side operations the
// reconciliation engine collaborates with: recording transactions,
// listing them, and tracking pending (not-yet-cleared) ones.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/stewardbooks/steward/internal/dates"
	"github.com/stewardbooks/steward/internal/id"
	"github.com/stewardbooks/steward/internal/model"
	"github.com/stewardbooks/steward/internal/store"
)

// ErrValidation marks operator input rejected before any mutation.
var ErrValidation = errors.New("validation failed")

// FundChecker tests whether a fund belongs to a church.
type FundChecker interface {
	BelongsTo(id, churchID string) bool
}

// Service provides business logic for ledger transactions.
type Service struct {
	store *store.Store
	funds FundChecker
	log   *logrus.Logger
}

// NewService creates a ledger Service. funds may be nil when fund
// validation is not wanted.
func NewService(st *store.Store, funds FundChecker, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{store: st, funds: funds, log: log}
}

// AddParams holds parameters for recording a transaction.
type AddParams struct {
	ChurchID    string
	Date        string // any supported encoding; normalized on entry
	Description string
	Amount      decimal.Decimal
	Type        model.TransactionType
	Reference   string
	FundID      string
}

// Add validates and records a transaction. Amounts must be positive;
// the Type field carries direction. A fund outside the church is
// rejected before anything is written.
func (s *Service) Add(ctx context.Context, params AddParams) (model.LedgerTransaction, error) {
	if !params.Amount.IsPositive() {
		return model.LedgerTransaction{}, fmt.Errorf("%w: amount must be positive, got %s", ErrValidation, params.Amount)
	}
	if params.Type != model.TypeIncome && params.Type != model.TypeExpense {
		return model.LedgerTransaction{}, fmt.Errorf("%w: unknown transaction type %q", ErrValidation, params.Type)
	}
	if params.Description == "" {
		return model.LedgerTransaction{}, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if params.FundID != "" && s.funds != nil && !s.funds.BelongsTo(params.FundID, params.ChurchID) {
		return model.LedgerTransaction{}, fmt.Errorf("%w: fund %s does not belong to church %s", ErrValidation, params.FundID, params.ChurchID)
	}

	txn := model.LedgerTransaction{
		ChurchID:    params.ChurchID,
		Date:        dates.NormalizeString(params.Date),
		Description: params.Description,
		Amount:      params.Amount,
		Type:        params.Type,
		Reference:   params.Reference,
		FundID:      params.FundID,
	}
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		return tx.InsertTransaction(ctx, &txn)
	})
	if err != nil {
		return model.LedgerTransaction{}, err
	}

	s.log.WithFields(logrus.Fields{
		"transaction_id": txn.ID,
		"church_id":      txn.ChurchID,
		"type":           string(txn.Type),
	}).Debug("[ledger.add]")
	return txn, nil
}

// Get returns a transaction by id.
func (s *Service) Get(ctx context.Context, txnID string) (model.LedgerTransaction, error) {
	return s.store.GetTransaction(ctx, txnID)
}

// List returns a church's transactions, newest first.
func (s *Service) List(ctx context.Context, churchID string) ([]model.LedgerTransaction, error) {
	return s.store.TransactionsByChurch(ctx, churchID)
}

// Unreconciled returns a church's transactions not yet matched to a
// bank row.
func (s *Service) Unreconciled(ctx context.Context, churchID string) ([]model.LedgerTransaction, error) {
	return s.store.TransactionsByReconciled(ctx, churchID, false)
}

// ByMonth returns a church's transactions dated inside a month key.
func (s *Service) ByMonth(ctx context.Context, churchID, monthKey string) ([]model.LedgerTransaction, error) {
	first, last, err := id.MonthBounds(monthKey)
	if err != nil {
		return nil, err
	}
	return s.store.TransactionsByDateRange(ctx, churchID, first, last)
}

// MarkPending opens a pending clearance record for a transaction that
// has not yet reached the bank's cleared balance.
func (s *Service) MarkPending(ctx context.Context, churchID, txnID string) (model.PendingTransaction, error) {
	var pending model.PendingTransaction
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		txn, err := tx.GetTransaction(ctx, txnID)
		if err != nil {
			return err
		}
		if txn.ChurchID != churchID {
			return fmt.Errorf("%w: transaction %s does not belong to church %s", ErrValidation, txnID, churchID)
		}
		pending = model.PendingTransaction{ChurchID: churchID, TransactionID: txnID}
		return tx.InsertPending(ctx, &pending)
	})
	if err != nil {
		return model.PendingTransaction{}, err
	}
	return pending, nil
}

// ResolvePending stamps a pending record as cleared.
func (s *Service) ResolvePending(ctx context.Context, pendingID string) error {
	return s.store.WithTx(ctx, func(tx *store.Store) error {
		return tx.ResolvePending(ctx, pendingID, time.Now().UTC())
	})
}

package recon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/stewardbooks/steward/internal/id"
	"github.com/stewardbooks/steward/internal/model"
	"github.com/stewardbooks/steward/internal/store"
)

// ErrSessionCompleted means a mutation targeted a completed session.
// Completed is terminal; there is no reopen.
var ErrSessionCompleted = errors.New("reconciliation session already completed")

// Service owns the reconciliation session state machine. Every mutation
// runs in one store transaction; reads are side-effect free.
type Service struct {
	store *store.Store
	log   *logrus.Logger
}

// NewService creates a reconciliation Service.
func NewService(st *store.Store, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{store: st, log: log}
}

// StartParams holds operator input for opening a session.
type StartParams struct {
	ChurchID      string
	Month         string // month key, "2025-01"
	BankBalance   decimal.Decimal
	LedgerBalance decimal.Decimal
}

// StartSession creates a session in the in-progress state with the
// operator-supplied balances. Initial variance is bank minus ledger.
// The open status exists as a value but the creation path skips it.
// One mutable session per church and month is convention, not enforced.
func (s *Service) StartSession(ctx context.Context, params StartParams) (model.ReconciliationSession, error) {
	if _, _, err := id.ParseMonthKey(params.Month); err != nil {
		return model.ReconciliationSession{}, err
	}

	sess := model.ReconciliationSession{
		ChurchID:      params.ChurchID,
		Month:         params.Month,
		Status:        model.SessionInProgress,
		BankBalance:   params.BankBalance,
		LedgerBalance: params.LedgerBalance,
		PendingTotal:  decimal.Zero,
		Variance:      params.BankBalance.Sub(params.LedgerBalance),
		Adjustments:   decimal.Zero,
		StartedAt:     time.Now().UTC(),
	}

	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		return tx.InsertSession(ctx, &sess)
	})
	if err != nil {
		return model.ReconciliationSession{}, err
	}

	s.log.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"church_id":  sess.ChurchID,
		"month":      sess.Month,
	}).Info("[recon.start]")
	return sess, nil
}

// SuggestMatches scores a church's ledger transactions against bank
// rows, scoped to one import batch when importID is set, otherwise
// against every imported row. Read-only.
func (s *Service) SuggestMatches(ctx context.Context, churchID, importID string) ([]Suggestion, error) {
	var (
		rows []model.BankRow
		err  error
	)
	if importID != "" {
		if _, err := s.store.GetImport(ctx, importID); err != nil {
			return nil, err
		}
		rows, err = s.store.BankRowsByImport(ctx, importID)
	} else {
		rows, err = s.store.BankRowsByChurch(ctx, churchID)
	}
	if err != nil {
		return nil, err
	}

	txns, err := s.store.TransactionsByReconciled(ctx, churchID, false)
	if err != nil {
		return nil, err
	}
	return ScoreCandidates(rows, txns), nil
}

// ConfirmParams identifies the match an operator accepted.
type ConfirmParams struct {
	SessionID     string
	BankRowID     string
	TransactionID string
	Confidence    decimal.Decimal
}

// ConfirmMatch records the match and marks the ledger transaction
// reconciled, atomically. Session status does not change.
func (s *Service) ConfirmMatch(ctx context.Context, params ConfirmParams) (model.ReconciliationMatch, error) {
	var match model.ReconciliationMatch
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		sess, err := tx.GetSession(ctx, params.SessionID)
		if err != nil {
			return err
		}
		if sess.Status == model.SessionCompleted {
			return fmt.Errorf("session %s: %w", sess.ID, ErrSessionCompleted)
		}

		row, err := tx.GetBankRow(ctx, params.BankRowID)
		if err != nil {
			return err
		}
		txn, err := tx.GetTransaction(ctx, params.TransactionID)
		if err != nil {
			return err
		}
		if txn.ChurchID != sess.ChurchID || row.ChurchID != sess.ChurchID {
			return fmt.Errorf("match references records outside church %s", sess.ChurchID)
		}

		match = model.ReconciliationMatch{
			SessionID:     params.SessionID,
			BankRowID:     params.BankRowID,
			TransactionID: params.TransactionID,
			Confidence:    params.Confidence,
		}
		if err := tx.InsertMatch(ctx, &match); err != nil {
			return err
		}
		return tx.MarkTransactionReconciled(ctx, params.TransactionID, true)
	})
	if err != nil {
		return model.ReconciliationMatch{}, err
	}

	s.log.WithFields(logrus.Fields{
		"session_id":     params.SessionID,
		"transaction_id": params.TransactionID,
	}).Info("[recon.confirm]")
	return match, nil
}

// UpdateParams carries mid-session edits. Nil fields are left alone.
type UpdateParams struct {
	SessionID   string
	Status      *model.SessionStatus
	Notes       *string
	Adjustments *decimal.Decimal
}

// UpdateProgress patches a session mid-flight. Setting adjustments also
// folds them into the ledger balance. Completing a session goes through
// Close, never through here.
func (s *Service) UpdateProgress(ctx context.Context, params UpdateParams) (model.ReconciliationSession, error) {
	var sess model.ReconciliationSession
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		var err error
		sess, err = tx.GetSession(ctx, params.SessionID)
		if err != nil {
			return err
		}
		if sess.Status == model.SessionCompleted {
			return fmt.Errorf("session %s: %w", sess.ID, ErrSessionCompleted)
		}
		if params.Status != nil {
			if *params.Status == model.SessionCompleted {
				return fmt.Errorf("session %s: completion requires close", sess.ID)
			}
			sess.Status = *params.Status
		}
		if params.Notes != nil {
			sess.Notes = *params.Notes
		}
		if params.Adjustments != nil {
			sess.Adjustments = *params.Adjustments
			sess.LedgerBalance = sess.LedgerBalance.Add(*params.Adjustments)
		}
		return tx.UpdateSession(ctx, sess)
	})
	if err != nil {
		return model.ReconciliationSession{}, err
	}
	return sess, nil
}

// CloseParams holds operator input for closing a session.
type CloseParams struct {
	SessionID   string
	Adjustments decimal.Decimal
	Notes       string
}

// Close completes a session: recomputes pending impact and variance,
// folds adjustments into the ledger balance, stamps closedAt, and
// freezes the full report as an immutable snapshot, all in one store
// transaction, so a snapshot without a completed session (or the
// reverse) is never observable.
func (s *Service) Close(ctx context.Context, params CloseParams) (Report, error) {
	var report Report
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		sess, err := tx.GetSession(ctx, params.SessionID)
		if err != nil {
			return err
		}
		if sess.Status == model.SessionCompleted {
			return fmt.Errorf("session %s: %w", sess.ID, ErrSessionCompleted)
		}

		pending, pendingTxns, pendingTotal, err := s.pendingImpact(ctx, tx, sess.ChurchID)
		if err != nil {
			return err
		}
		unreconciled, err := tx.TransactionsByReconciled(ctx, sess.ChurchID, false)
		if err != nil {
			return err
		}

		variance := computeVariance(sess.BankBalance, sess.LedgerBalance, params.Adjustments, pendingTotal)

		now := time.Now().UTC()
		sess.Status = model.SessionCompleted
		sess.LedgerBalance = sess.LedgerBalance.Add(params.Adjustments)
		sess.Adjustments = params.Adjustments
		sess.PendingTotal = pendingTotal
		sess.Variance = variance
		sess.Notes = params.Notes
		sess.ClosedAt = &now

		report = buildReport(sess, pending, pendingTxns, pendingTotal, unreconciled, variance)
		payload, err := json.Marshal(report)
		if err != nil {
			return fmt.Errorf("encoding report snapshot: %w", err)
		}

		if err := tx.UpdateSession(ctx, sess); err != nil {
			return err
		}
		return tx.InsertSnapshot(ctx, &model.ReportSnapshot{
			ChurchID:    sess.ChurchID,
			SessionID:   sess.ID,
			Type:        "reconciliation",
			GeneratedAt: now,
			Params:      sess.Month,
			Payload:     payload,
		})
	})
	if err != nil {
		return Report{}, err
	}

	s.log.WithFields(logrus.Fields{
		"session_id": params.SessionID,
		"variance":   report.Variance.String(),
	}).Info("[recon.close]")
	return report, nil
}

// GetReport returns the frozen snapshot for a closed session verbatim,
// or recomputes the report live from current data while the session is
// still open. Closed reports are historically stable; open reports
// always reflect live state.
func (s *Service) GetReport(ctx context.Context, sessionID string) (Report, error) {
	snap, err := s.store.SnapshotBySession(ctx, sessionID)
	if err == nil {
		var report Report
		if err := json.Unmarshal(snap.Payload, &report); err != nil {
			return Report{}, fmt.Errorf("decoding report snapshot %s: %w", snap.ID, err)
		}
		return report, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return Report{}, err
	}

	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return Report{}, err
	}
	pending, pendingTxns, pendingTotal, err := s.pendingImpact(ctx, s.store, sess.ChurchID)
	if err != nil {
		return Report{}, err
	}
	unreconciled, err := s.store.TransactionsByReconciled(ctx, sess.ChurchID, false)
	if err != nil {
		return Report{}, err
	}
	variance := computeVariance(sess.BankBalance, sess.LedgerBalance, sess.Adjustments, pendingTotal)
	return buildReport(sess, pending, pendingTxns, pendingTotal, unreconciled, variance), nil
}

// PendingImpact exposes the mid-session pending computation: the
// unresolved pending records, their underlying transactions, and the
// signed total.
func (s *Service) PendingImpact(ctx context.Context, churchID string) ([]model.PendingTransaction, []model.LedgerTransaction, decimal.Decimal, error) {
	return s.pendingImpact(ctx, s.store, churchID)
}

// pendingImpact resolves every unresolved pending record to its ledger
// transaction. A pending record pointing at a missing transaction is a
// hard not-found error, not something to skip.
func (s *Service) pendingImpact(ctx context.Context, st *store.Store, churchID string) ([]model.PendingTransaction, []model.LedgerTransaction, decimal.Decimal, error) {
	pending, err := st.UnresolvedPendingByChurch(ctx, churchID)
	if err != nil {
		return nil, nil, decimal.Zero, err
	}

	txns := make([]model.LedgerTransaction, 0, len(pending))
	for _, p := range pending {
		txn, err := st.GetTransaction(ctx, p.TransactionID)
		if err != nil {
			return nil, nil, decimal.Zero, err
		}
		txns = append(txns, txn)
	}
	return pending, txns, pendingImpact(txns), nil
}

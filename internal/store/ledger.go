package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stewardbooks/steward/internal/model"
)

const txnColumns = "id, church_id, date, description, amount, type, reference, fund_id, reconciled, created_at"

// InsertTransaction persists a ledger transaction, assigning an id if
// unset.
func (s *Store) InsertTransaction(ctx context.Context, txn *model.LedgerTransaction) error {
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO transactions (id, church_id, date, date_sort, description, amount, type, reference, fund_id, reconciled, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.ChurchID, txn.Date, dateSortKey(txn.Date), txn.Description,
		txn.Amount.String(), string(txn.Type), txn.Reference, txn.FundID,
		txn.Reconciled, formatTime(txn.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}
	return nil
}

// GetTransaction is a point lookup by id.
func (s *Store) GetTransaction(ctx context.Context, id string) (model.LedgerTransaction, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT "+txnColumns+" FROM transactions WHERE id = ?", id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.LedgerTransaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	return txn, err
}

// TransactionsByChurch lists a church's transactions in descending date
// order.
func (s *Store) TransactionsByChurch(ctx context.Context, churchID string) ([]model.LedgerTransaction, error) {
	return s.queryTransactions(ctx,
		"SELECT "+txnColumns+" FROM transactions WHERE church_id = ? ORDER BY date_sort DESC, created_at DESC", churchID)
}

// TransactionsByReconciled lists by the (church, reconciled) index.
func (s *Store) TransactionsByReconciled(ctx context.Context, churchID string, reconciled bool) ([]model.LedgerTransaction, error) {
	return s.queryTransactions(ctx,
		"SELECT "+txnColumns+" FROM transactions WHERE church_id = ? AND reconciled = ? ORDER BY date_sort DESC, created_at DESC",
		churchID, reconciled)
}

// TransactionsByDateRange lists transactions with canonical dates inside
// [from, to], both DD/MM/YYYY inclusive.
func (s *Store) TransactionsByDateRange(ctx context.Context, churchID, from, to string) ([]model.LedgerTransaction, error) {
	return s.queryTransactions(ctx,
		"SELECT "+txnColumns+" FROM transactions WHERE church_id = ? AND date_sort >= ? AND date_sort <= ? ORDER BY date_sort",
		churchID, dateSortKey(from), dateSortKey(to))
}

// MarkTransactionReconciled flips the reconciled flag.
func (s *Store) MarkTransactionReconciled(ctx context.Context, id string, reconciled bool) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE transactions SET reconciled = ? WHERE id = ?", reconciled, id)
	if err != nil {
		return fmt.Errorf("updating transaction %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]model.LedgerTransaction, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var out []model.LedgerTransaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, txn)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(r rowScanner) (model.LedgerTransaction, error) {
	var (
		txn                    model.LedgerTransaction
		amount, typ, createdAt string
	)
	err := r.Scan(&txn.ID, &txn.ChurchID, &txn.Date, &txn.Description,
		&amount, &typ, &txn.Reference, &txn.FundID, &txn.Reconciled, &createdAt)
	if err != nil {
		return model.LedgerTransaction{}, err
	}
	if txn.Amount, err = parseDec(amount); err != nil {
		return model.LedgerTransaction{}, fmt.Errorf("transaction %s amount: %w", txn.ID, err)
	}
	txn.Type = model.TransactionType(typ)
	if txn.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.LedgerTransaction{}, fmt.Errorf("transaction %s created_at: %w", txn.ID, err)
	}
	return txn, nil
}

// InsertPending opens a pending clearance record for a transaction.
func (s *Store) InsertPending(ctx context.Context, p *model.PendingTransaction) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO pending_transactions (id, church_id, transaction_id, created_at, resolved_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.ChurchID, p.TransactionID, formatTime(p.CreatedAt), nullTime(p.ResolvedAt))
	if err != nil {
		return fmt.Errorf("inserting pending transaction: %w", err)
	}
	return nil
}

// UnresolvedPendingByChurch lists pending records with no resolved_at.
func (s *Store) UnresolvedPendingByChurch(ctx context.Context, churchID string) ([]model.PendingTransaction, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, church_id, transaction_id, created_at, resolved_at
		FROM pending_transactions WHERE church_id = ? AND resolved_at IS NULL
		ORDER BY created_at`, churchID)
	if err != nil {
		return nil, fmt.Errorf("querying pending transactions: %w", err)
	}
	defer rows.Close()

	var out []model.PendingTransaction
	for rows.Next() {
		var (
			p          model.PendingTransaction
			createdAt  string
			resolvedAt sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.ChurchID, &p.TransactionID, &createdAt, &resolvedAt); err != nil {
			return nil, err
		}
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("pending %s created_at: %w", p.ID, err)
		}
		if p.ResolvedAt, err = scanNullTime(resolvedAt); err != nil {
			return nil, fmt.Errorf("pending %s resolved_at: %w", p.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ResolvePending stamps a pending record as cleared.
func (s *Store) ResolvePending(ctx context.Context, id string, at time.Time) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE pending_transactions SET resolved_at = ? WHERE id = ?", formatTime(at), id)
	if err != nil {
		return fmt.Errorf("resolving pending %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("pending transaction %s: %w", id, ErrNotFound)
	}
	return nil
}

// InsertFund persists a fund.
func (s *Store) InsertFund(ctx context.Context, f *model.Fund) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	_, err := s.q.ExecContext(ctx,
		"INSERT INTO funds (id, church_id, name, type) VALUES (?, ?, ?, ?)",
		f.ID, f.ChurchID, f.Name, string(f.Type))
	if err != nil {
		return fmt.Errorf("inserting fund: %w", err)
	}
	return nil
}

// FundsByChurch lists a church's funds.
func (s *Store) FundsByChurch(ctx context.Context, churchID string) ([]model.Fund, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT id, church_id, name, type FROM funds WHERE church_id = ? ORDER BY name", churchID)
	if err != nil {
		return nil, fmt.Errorf("querying funds: %w", err)
	}
	defer rows.Close()

	var out []model.Fund
	for rows.Next() {
		var f model.Fund
		var typ string
		if err := rows.Scan(&f.ID, &f.ChurchID, &f.Name, &typ); err != nil {
			return nil, err
		}
		f.Type = model.FundType(typ)
		out = append(out, f)
	}
	return out, rows.Err()
}

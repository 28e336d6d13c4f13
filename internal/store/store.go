// Package store is the transactional document store behind the ledger
// and reconciliation engine: an embedded SQLite database exposing the
// indexed lookups the engine consumes. Every logical mutation runs
// inside one transaction via WithTx so partial application is never
// observable.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned for point lookups of missing records. It is
// terminal: callers surface it, they do not retry.
var ErrNotFound = errors.New("record not found")

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	church_id TEXT NOT NULL,
	date TEXT NOT NULL,
	date_sort TEXT NOT NULL,
	description TEXT NOT NULL,
	amount TEXT NOT NULL,
	type TEXT NOT NULL,
	reference TEXT NOT NULL DEFAULT '',
	fund_id TEXT NOT NULL DEFAULT '',
	reconciled INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_txn_church_type ON transactions(church_id, type);
CREATE INDEX IF NOT EXISTS idx_txn_church_date ON transactions(church_id, date_sort);
CREATE INDEX IF NOT EXISTS idx_txn_church_reconciled ON transactions(church_id, reconciled);

CREATE TABLE IF NOT EXISTS imports (
	id TEXT PRIMARY KEY,
	church_id TEXT NOT NULL,
	file_name TEXT NOT NULL,
	format TEXT NOT NULL,
	row_count INTEGER NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bank_rows (
	id TEXT PRIMARY KEY,
	import_id TEXT NOT NULL,
	church_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	date TEXT NOT NULL,
	description TEXT NOT NULL,
	amount TEXT NOT NULL,
	reference TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_bank_rows_import ON bank_rows(import_id);

CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	church_id TEXT NOT NULL,
	month TEXT NOT NULL,
	status TEXT NOT NULL,
	bank_balance TEXT NOT NULL,
	ledger_balance TEXT NOT NULL,
	pending_total TEXT NOT NULL,
	variance TEXT NOT NULL,
	adjustments TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	started_at TEXT NOT NULL,
	closed_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_church ON sessions(church_id, month);

CREATE TABLE IF NOT EXISTS matches (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	bank_row_id TEXT NOT NULL,
	transaction_id TEXT NOT NULL,
	confidence TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_matches_session ON matches(session_id);

CREATE TABLE IF NOT EXISTS pending_transactions (
	id TEXT PRIMARY KEY,
	church_id TEXT NOT NULL,
	transaction_id TEXT NOT NULL,
	created_at TEXT NOT NULL,
	resolved_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_pending_church ON pending_transactions(church_id);

CREATE TABLE IF NOT EXISTS report_snapshots (
	id TEXT PRIMARY KEY,
	church_id TEXT NOT NULL,
	session_id TEXT NOT NULL,
	type TEXT NOT NULL,
	generated_at TEXT NOT NULL,
	params TEXT NOT NULL DEFAULT '',
	payload BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_session ON report_snapshots(session_id);

CREATE TABLE IF NOT EXISTS funds (
	id TEXT PRIMARY KEY,
	church_id TEXT NOT NULL,
	name TEXT NOT NULL,
	type TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_funds_church ON funds(church_id);
`

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store wraps the database. A Store obtained from WithTx runs all its
// operations on that transaction.
type Store struct {
	db  *sql.DB
	q   querier
	log *logrus.Logger
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string, log *logrus.Logger) (*Store, error) {
	if log == nil {
		log = logrus.New()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configuring store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db, q: db, log: log}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// WithTx runs fn against a Store bound to a single transaction,
// committing on success and rolling back on error.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	t, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(&Store{db: s.db, q: t, log: s.log}); err != nil {
		_ = t.Rollback()
		return err
	}
	if err := t.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// dateSortKey converts a canonical DD/MM/YYYY date to a sortable
// YYYYMMDD key so (church, date-range) queries can use the index.
// Non-canonical dates (a normalizer fallback) sort as themselves.
func dateSortKey(date string) string {
	parts := strings.Split(date, "/")
	if len(parts) != 3 || len(parts[2]) != 4 {
		return date
	}
	return parts[2] + parts[1] + parts[0]
}

func parseDec(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func scanNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

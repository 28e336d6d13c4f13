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

// InsertImport persists an import batch and its bank rows. Call inside
// WithTx so a failed row insert leaves no half-written batch.
func (s *Store) InsertImport(ctx context.Context, batch *model.ImportBatch, rows []model.BankRow) error {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now().UTC()
	}
	batch.RowCount = len(rows)

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO imports (id, church_id, file_name, format, row_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		batch.ID, batch.ChurchID, batch.FileName, batch.Format, batch.RowCount, formatTime(batch.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting import: %w", err)
	}

	for i := range rows {
		rows[i].ImportID = batch.ID
		rows[i].ChurchID = batch.ChurchID
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
		}
		_, err := s.q.ExecContext(ctx, `
			INSERT INTO bank_rows (id, import_id, church_id, position, date, description, amount, reference)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rows[i].ID, rows[i].ImportID, rows[i].ChurchID, rows[i].Position,
			rows[i].Date, rows[i].Description, rows[i].Amount.String(), rows[i].Reference)
		if err != nil {
			return fmt.Errorf("inserting bank row %d: %w", rows[i].Position, err)
		}
	}
	return nil
}

// GetImport is a point lookup by id.
func (s *Store) GetImport(ctx context.Context, id string) (model.ImportBatch, error) {
	var (
		b         model.ImportBatch
		createdAt string
	)
	err := s.q.QueryRowContext(ctx, `
		SELECT id, church_id, file_name, format, row_count, created_at
		FROM imports WHERE id = ?`, id).
		Scan(&b.ID, &b.ChurchID, &b.FileName, &b.Format, &b.RowCount, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ImportBatch{}, fmt.Errorf("import %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.ImportBatch{}, fmt.Errorf("querying import %s: %w", id, err)
	}
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.ImportBatch{}, fmt.Errorf("import %s created_at: %w", id, err)
	}
	return b, nil
}

// BankRowsByImport lists an import's rows in file order.
func (s *Store) BankRowsByImport(ctx context.Context, importID string) ([]model.BankRow, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, import_id, church_id, position, date, description, amount, reference
		FROM bank_rows WHERE import_id = ? ORDER BY position`, importID)
	if err != nil {
		return nil, fmt.Errorf("querying bank rows: %w", err)
	}
	defer rows.Close()

	var out []model.BankRow
	for rows.Next() {
		r, err := scanBankRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// BankRowsByChurch lists every imported row for a church, newest import
// first, file order within an import.
func (s *Store) BankRowsByChurch(ctx context.Context, churchID string) ([]model.BankRow, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT b.id, b.import_id, b.church_id, b.position, b.date, b.description, b.amount, b.reference
		FROM bank_rows b JOIN imports i ON i.id = b.import_id
		WHERE b.church_id = ? ORDER BY i.created_at DESC, b.position`, churchID)
	if err != nil {
		return nil, fmt.Errorf("querying bank rows: %w", err)
	}
	defer rows.Close()

	var out []model.BankRow
	for rows.Next() {
		r, err := scanBankRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetBankRow is a point lookup by id.
func (s *Store) GetBankRow(ctx context.Context, id string) (model.BankRow, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, import_id, church_id, position, date, description, amount, reference
		FROM bank_rows WHERE id = ?`, id)
	r, err := scanBankRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BankRow{}, fmt.Errorf("bank row %s: %w", id, ErrNotFound)
	}
	return r, err
}

func scanBankRow(r rowScanner) (model.BankRow, error) {
	var (
		row    model.BankRow
		amount string
	)
	err := r.Scan(&row.ID, &row.ImportID, &row.ChurchID, &row.Position,
		&row.Date, &row.Description, &amount, &row.Reference)
	if err != nil {
		return model.BankRow{}, err
	}
	if row.Amount, err = parseDec(amount); err != nil {
		return model.BankRow{}, fmt.Errorf("bank row %s amount: %w", row.ID, err)
	}
	return row, nil
}

const sessionColumns = "id, church_id, month, status, bank_balance, ledger_balance, pending_total, variance, adjustments, notes, started_at, closed_at"

// InsertSession persists a new reconciliation session.
func (s *Store) InsertSession(ctx context.Context, sess *model.ReconciliationSession) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now().UTC()
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.ChurchID, sess.Month, string(sess.Status),
		sess.BankBalance.String(), sess.LedgerBalance.String(),
		sess.PendingTotal.String(), sess.Variance.String(), sess.Adjustments.String(),
		sess.Notes, formatTime(sess.StartedAt), nullTime(sess.ClosedAt))
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// UpdateSession writes back a session's mutable fields. Last write wins;
// there is no version check.
func (s *Store) UpdateSession(ctx context.Context, sess model.ReconciliationSession) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE sessions SET status = ?, bank_balance = ?, ledger_balance = ?,
			pending_total = ?, variance = ?, adjustments = ?, notes = ?, closed_at = ?
		WHERE id = ?`,
		string(sess.Status), sess.BankBalance.String(), sess.LedgerBalance.String(),
		sess.PendingTotal.String(), sess.Variance.String(), sess.Adjustments.String(),
		sess.Notes, nullTime(sess.ClosedAt), sess.ID)
	if err != nil {
		return fmt.Errorf("updating session %s: %w", sess.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", sess.ID, ErrNotFound)
	}
	return nil
}

// GetSession is a point lookup by id.
func (s *Store) GetSession(ctx context.Context, id string) (model.ReconciliationSession, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ReconciliationSession{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return sess, err
}

// SessionsByChurch lists sessions newest first.
func (s *Store) SessionsByChurch(ctx context.Context, churchID string) ([]model.ReconciliationSession, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE church_id = ? ORDER BY started_at DESC", churchID)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var out []model.ReconciliationSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func scanSession(r rowScanner) (model.ReconciliationSession, error) {
	var (
		sess                                         model.ReconciliationSession
		status, bank, ledger, pending, variance, adj string
		startedAt                                    string
		closedAt                                     sql.NullString
	)
	err := r.Scan(&sess.ID, &sess.ChurchID, &sess.Month, &status,
		&bank, &ledger, &pending, &variance, &adj, &sess.Notes, &startedAt, &closedAt)
	if err != nil {
		return model.ReconciliationSession{}, err
	}
	sess.Status = model.SessionStatus(status)
	if sess.BankBalance, err = parseDec(bank); err != nil {
		return model.ReconciliationSession{}, fmt.Errorf("session %s bank_balance: %w", sess.ID, err)
	}
	if sess.LedgerBalance, err = parseDec(ledger); err != nil {
		return model.ReconciliationSession{}, fmt.Errorf("session %s ledger_balance: %w", sess.ID, err)
	}
	if sess.PendingTotal, err = parseDec(pending); err != nil {
		return model.ReconciliationSession{}, fmt.Errorf("session %s pending_total: %w", sess.ID, err)
	}
	if sess.Variance, err = parseDec(variance); err != nil {
		return model.ReconciliationSession{}, fmt.Errorf("session %s variance: %w", sess.ID, err)
	}
	if sess.Adjustments, err = parseDec(adj); err != nil {
		return model.ReconciliationSession{}, fmt.Errorf("session %s adjustments: %w", sess.ID, err)
	}
	if sess.StartedAt, err = parseTime(startedAt); err != nil {
		return model.ReconciliationSession{}, fmt.Errorf("session %s started_at: %w", sess.ID, err)
	}
	if sess.ClosedAt, err = scanNullTime(closedAt); err != nil {
		return model.ReconciliationSession{}, fmt.Errorf("session %s closed_at: %w", sess.ID, err)
	}
	return sess, nil
}

// InsertMatch records a confirmed match.
func (s *Store) InsertMatch(ctx context.Context, m *model.ReconciliationMatch) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO matches (id, session_id, bank_row_id, transaction_id, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.SessionID, m.BankRowID, m.TransactionID, m.Confidence.String(), formatTime(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting match: %w", err)
	}
	return nil
}

// MatchesBySession lists a session's confirmed matches oldest first.
func (s *Store) MatchesBySession(ctx context.Context, sessionID string) ([]model.ReconciliationMatch, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, session_id, bank_row_id, transaction_id, confidence, created_at
		FROM matches WHERE session_id = ? ORDER BY created_at`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()

	var out []model.ReconciliationMatch
	for rows.Next() {
		var (
			m          model.ReconciliationMatch
			confidence string
			createdAt  string
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &m.BankRowID, &m.TransactionID, &confidence, &createdAt); err != nil {
			return nil, err
		}
		if m.Confidence, err = parseDec(confidence); err != nil {
			return nil, fmt.Errorf("match %s confidence: %w", m.ID, err)
		}
		if m.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("match %s created_at: %w", m.ID, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MatchedBankRowIDs returns the ids of an import's rows that appear in
// any confirmed match.
func (s *Store) MatchedBankRowIDs(ctx context.Context, importID string) (map[string]struct{}, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT DISTINCT m.bank_row_id
		FROM matches m JOIN bank_rows b ON b.id = m.bank_row_id
		WHERE b.import_id = ?`, importID)
	if err != nil {
		return nil, fmt.Errorf("querying matched rows: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

// InsertSnapshot persists a frozen report. Snapshots are immutable:
// there is no update path.
func (s *Store) InsertSnapshot(ctx context.Context, snap *model.ReportSnapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.GeneratedAt.IsZero() {
		snap.GeneratedAt = time.Now().UTC()
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO report_snapshots (id, church_id, session_id, type, generated_at, params, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.ChurchID, snap.SessionID, snap.Type,
		formatTime(snap.GeneratedAt), snap.Params, snap.Payload)
	if err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}
	return nil
}

// SnapshotBySession returns a session's frozen report, or ErrNotFound
// when the session has never been closed.
func (s *Store) SnapshotBySession(ctx context.Context, sessionID string) (model.ReportSnapshot, error) {
	var (
		snap        model.ReportSnapshot
		generatedAt string
	)
	err := s.q.QueryRowContext(ctx, `
		SELECT id, church_id, session_id, type, generated_at, params, payload
		FROM report_snapshots WHERE session_id = ? ORDER BY generated_at DESC LIMIT 1`, sessionID).
		Scan(&snap.ID, &snap.ChurchID, &snap.SessionID, &snap.Type, &generatedAt, &snap.Params, &snap.Payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ReportSnapshot{}, fmt.Errorf("snapshot for session %s: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return model.ReportSnapshot{}, fmt.Errorf("querying snapshot: %w", err)
	}
	if snap.GeneratedAt, err = parseTime(generatedAt); err != nil {
		return model.ReportSnapshot{}, fmt.Errorf("snapshot %s generated_at: %w", snap.ID, err)
	}
	return snap, nil
}

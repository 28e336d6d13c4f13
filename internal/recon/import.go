package recon

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stewardbooks/steward/internal/bankformat"
	"github.com/stewardbooks/steward/internal/model"
	"github.com/stewardbooks/steward/internal/statement"
	"github.com/stewardbooks/steward/internal/store"
)

// ImportParams describes one uploaded statement file.
type ImportParams struct {
	ChurchID string
	FileName string
	Data     []byte
	// Mapping overrides the suggested column mapping when the operator
	// corrected it. Nil means accept the suggestion.
	Mapping *bankformat.ColumnMapping
}

// ImportResult is what an import produced: the persisted batch plus the
// detection and mapping that were applied, for the operator to review.
type ImportResult struct {
	Batch   model.ImportBatch
	Format  bankformat.Format
	Mapping bankformat.ColumnMapping
	Rows    []model.BankRow
}

// ImportStatement runs the ingestion pipeline: parse, detect the bank
// format, map columns (operator override wins), normalize rows, and
// persist the batch. Nothing is written when any step fails.
func (s *Service) ImportStatement(ctx context.Context, params ImportParams) (ImportResult, error) {
	header, parsed, err := parseByExtension(params.FileName, params.Data)
	if err != nil {
		return ImportResult{}, err
	}

	format := bankformat.Detect(header)
	mapping := bankformat.SuggestMapping(header, format)
	if params.Mapping != nil {
		mapping = *params.Mapping
	}

	rows, err := statement.NormalizeRows(parsed, mapping)
	if err != nil {
		return ImportResult{}, err
	}

	batch := model.ImportBatch{
		ChurchID: params.ChurchID,
		FileName: filepath.Base(params.FileName),
		Format:   string(format),
	}
	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		return tx.InsertImport(ctx, &batch, rows)
	})
	if err != nil {
		return ImportResult{}, err
	}

	s.log.WithFields(logrus.Fields{
		"import_id": batch.ID,
		"church_id": batch.ChurchID,
		"file":      batch.FileName,
		"format":    batch.Format,
		"rows":      batch.RowCount,
	}).Info("[recon.import]")

	return ImportResult{Batch: batch, Format: format, Mapping: mapping, Rows: rows}, nil
}

// CommitImport turns an import's still-unmatched rows into ledger
// transactions: positive amounts become income, negative expense.
// Zero-amount rows are skipped. Atomic; a missing import is terminal.
func (s *Service) CommitImport(ctx context.Context, importID string) ([]model.LedgerTransaction, error) {
	var created []model.LedgerTransaction
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		batch, err := tx.GetImport(ctx, importID)
		if err != nil {
			return err
		}
		rows, err := tx.BankRowsByImport(ctx, importID)
		if err != nil {
			return err
		}
		matched, err := tx.MatchedBankRowIDs(ctx, importID)
		if err != nil {
			return err
		}

		for _, row := range rows {
			if _, ok := matched[row.ID]; ok {
				continue
			}
			if row.Amount.IsZero() {
				continue
			}
			txn := model.LedgerTransaction{
				ChurchID:    batch.ChurchID,
				Date:        row.Date,
				Description: row.Description,
				Amount:      row.Amount.Abs(),
				Type:        model.TypeIncome,
				Reference:   row.Reference,
			}
			if row.Amount.IsNegative() {
				txn.Type = model.TypeExpense
			}
			if err := tx.InsertTransaction(ctx, &txn); err != nil {
				return err
			}
			created = append(created, txn)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"import_id": importID,
		"created":   len(created),
	}).Info("[recon.commit]")
	return created, nil
}

func parseByExtension(fileName string, data []byte) ([]string, []model.ParsedRow, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx":
		return statement.ParseXLSXBytes(data)
	default:
		return statement.ParseCSV(data)
	}
}

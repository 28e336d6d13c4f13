package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/stewardbooks/steward/internal/auditlog"
	"github.com/stewardbooks/steward/internal/bankformat"
	"github.com/stewardbooks/steward/internal/recon"
)

func newImportCommand(configPath *string, verbose *bool) *cobra.Command {
	var (
		dateCol string
		descCol string
		amtCol  string
		inCol   string
		outCol  string
		refCol  string
		commit  bool
	)

	cmd := &cobra.Command{
		Use:   "import <statement-file>",
		Short: "Import a bank statement CSV or XLSX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath, *verbose)
			if err != nil {
				return err
			}
			defer a.close()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading statement: %w", err)
			}

			params := recon.ImportParams{
				ChurchID: a.cfg.Church.ID,
				FileName: filepath.Base(args[0]),
				Data:     data,
			}
			if override := mappingFromFlags(dateCol, descCol, amtCol, inCol, outCol, refCol); override != nil {
				params.Mapping = override
			}

			svc := recon.NewService(a.st, a.log)
			result, err := svc.ImportStatement(cmd.Context(), params)
			if err != nil {
				return err
			}

			fmt.Printf("Imported %d rows from %s (format: %s, import id: %s)\n",
				result.Batch.RowCount, result.Batch.FileName, result.Format, result.Batch.ID)

			if commit {
				created, err := svc.CommitImport(cmd.Context(), result.Batch.ID)
				if err != nil {
					return err
				}
				fmt.Printf("Committed %d rows as ledger transactions\n", len(created))
			}

			return audit(a, auditlog.Entry{
				Timestamp: time.Now().UTC(),
				Action:    "import_statement",
				Details:   fmt.Sprintf("%s, %d rows, format %s", result.Batch.FileName, result.Batch.RowCount, result.Format),
			})
		},
	}

	cmd.Flags().StringVar(&dateCol, "date-col", "", "override date column header")
	cmd.Flags().StringVar(&descCol, "desc-col", "", "override description column header")
	cmd.Flags().StringVar(&amtCol, "amount-col", "", "override single amount column header")
	cmd.Flags().StringVar(&inCol, "in-col", "", "override money-in column header")
	cmd.Flags().StringVar(&outCol, "out-col", "", "override money-out column header")
	cmd.Flags().StringVar(&refCol, "ref-col", "", "override reference column header")
	cmd.Flags().BoolVar(&commit, "commit", false, "commit unmatched rows as ledger transactions")

	return cmd
}

// mappingFromFlags builds an operator override mapping, or nil when no
// override flags were set. Required fields missing from the override
// are caught by mapping validation, not here.
func mappingFromFlags(dateCol, descCol, amtCol, inCol, outCol, refCol string) *bankformat.ColumnMapping {
	if dateCol == "" && descCol == "" && amtCol == "" && inCol == "" && outCol == "" && refCol == "" {
		return nil
	}
	m := &bankformat.ColumnMapping{
		Date:        dateCol,
		Description: descCol,
		Reference:   refCol,
	}
	if inCol != "" || outCol != "" {
		m.Amount = bankformat.SplitAmount{In: inCol, Out: outCol}
	} else {
		m.Amount = bankformat.SingleAmount{Column: amtCol}
	}
	return m
}

// audit appends an operator action when the audit log is enabled.
func audit(a *app, e auditlog.Entry) error {
	if !a.cfg.Audit.Enabled {
		return nil
	}
	dir := a.cfg.Audit.Dir
	if dir == "" {
		dir = "."
	}
	return auditlog.Append(dir, []auditlog.Entry{e})
}

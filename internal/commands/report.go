package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stewardbooks/steward/internal/recon"
)

func newSuggestCommand(configPath *string, verbose *bool) *cobra.Command {
	var importID string

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest matches between imported rows and the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath, *verbose)
			if err != nil {
				return err
			}
			defer a.close()

			svc := recon.NewService(a.st, a.log)
			suggestions, err := svc.SuggestMatches(cmd.Context(), a.cfg.Church.ID, importID)
			if err != nil {
				return err
			}

			floor := a.cfg.Matching.MinConfidence
			shown := 0
			for _, s := range suggestions {
				if s.Confidence.InexactFloat64() < floor {
					continue
				}
				fmt.Printf("%s  row %s  ->  txn %s\n",
					s.Confidence.StringFixed(2), s.BankRowID, s.TransactionID)
				shown++
			}
			if shown == 0 {
				fmt.Println("No suggestions")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&importID, "import", "", "limit to one import batch")
	return cmd
}

func newReportCommand(configPath *string, verbose *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <session-id>",
		Short: "Print a session's reconciliation report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath, *verbose)
			if err != nil {
				return err
			}
			defer a.close()

			svc := recon.NewService(a.st, a.log)
			report, err := svc.GetReport(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding report: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}
	return cmd
}

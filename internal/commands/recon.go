package commands

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/stewardbooks/steward/internal/auditlog"
	"github.com/stewardbooks/steward/internal/recon"
)

func newReconCommand(configPath *string, verbose *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recon",
		Short: "Manage reconciliation sessions",
	}
	cmd.AddCommand(newReconStartCommand(configPath, verbose))
	cmd.AddCommand(newReconConfirmCommand(configPath, verbose))
	cmd.AddCommand(newReconCloseCommand(configPath, verbose))
	cmd.AddCommand(newReconStatusCommand(configPath, verbose))
	return cmd
}

func newReconStartCommand(configPath *string, verbose *bool) *cobra.Command {
	var (
		month         string
		bankBalance   string
		ledgerBalance string
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a reconciliation session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath, *verbose)
			if err != nil {
				return err
			}
			defer a.close()

			bank, err := decimal.NewFromString(bankBalance)
			if err != nil {
				return fmt.Errorf("parsing bank balance %q: %w", bankBalance, err)
			}
			ledger, err := decimal.NewFromString(ledgerBalance)
			if err != nil {
				return fmt.Errorf("parsing ledger balance %q: %w", ledgerBalance, err)
			}

			svc := recon.NewService(a.st, a.log)
			sess, err := svc.StartSession(cmd.Context(), recon.StartParams{
				ChurchID:      a.cfg.Church.ID,
				Month:         month,
				BankBalance:   bank,
				LedgerBalance: ledger,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Started session %s for %s (initial variance %s)\n",
				sess.ID, sess.Month, sess.Variance.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month key, e.g. 2025-01 (required)")
	_ = cmd.MarkFlagRequired("month")
	cmd.Flags().StringVar(&bankBalance, "bank-balance", "", "statement closing balance (required)")
	_ = cmd.MarkFlagRequired("bank-balance")
	cmd.Flags().StringVar(&ledgerBalance, "ledger-balance", "", "ledger balance (required)")
	_ = cmd.MarkFlagRequired("ledger-balance")

	return cmd
}

func newReconConfirmCommand(configPath *string, verbose *bool) *cobra.Command {
	var (
		sessionID  string
		bankRowID  string
		txnID      string
		confidence string
	)

	cmd := &cobra.Command{
		Use:   "confirm",
		Short: "Confirm a suggested match",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath, *verbose)
			if err != nil {
				return err
			}
			defer a.close()

			conf := decimal.Zero
			if confidence != "" {
				if conf, err = decimal.NewFromString(confidence); err != nil {
					return fmt.Errorf("parsing confidence %q: %w", confidence, err)
				}
			}

			svc := recon.NewService(a.st, a.log)
			match, err := svc.ConfirmMatch(cmd.Context(), recon.ConfirmParams{
				SessionID:     sessionID,
				BankRowID:     bankRowID,
				TransactionID: txnID,
				Confidence:    conf,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Confirmed match %s (transaction marked reconciled)\n", match.ID)
			return audit(a, auditlog.Entry{
				Timestamp: time.Now().UTC(),
				Action:    "confirm_match",
				Details:   fmt.Sprintf("row %s -> transaction %s", bankRowID, txnID),
				SessionID: sessionID,
			})
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session id (required)")
	_ = cmd.MarkFlagRequired("session")
	cmd.Flags().StringVar(&bankRowID, "row", "", "bank row id (required)")
	_ = cmd.MarkFlagRequired("row")
	cmd.Flags().StringVar(&txnID, "txn", "", "transaction id (required)")
	_ = cmd.MarkFlagRequired("txn")
	cmd.Flags().StringVar(&confidence, "confidence", "", "confidence score of the accepted suggestion")

	return cmd
}

func newReconCloseCommand(configPath *string, verbose *bool) *cobra.Command {
	var (
		sessionID   string
		adjustments string
		notes       string
	)

	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close a session and freeze its report",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath, *verbose)
			if err != nil {
				return err
			}
			defer a.close()

			adj := decimal.Zero
			if adjustments != "" {
				if adj, err = decimal.NewFromString(adjustments); err != nil {
					return fmt.Errorf("parsing adjustments %q: %w", adjustments, err)
				}
			}

			svc := recon.NewService(a.st, a.log)
			report, err := svc.Close(cmd.Context(), recon.CloseParams{
				SessionID:   sessionID,
				Adjustments: adj,
				Notes:       notes,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Closed session %s\n", sessionID)
			fmt.Printf("  pending total: %s\n", report.PendingTotal.StringFixed(2))
			fmt.Printf("  variance:      %s\n", report.Variance.StringFixed(2))
			return audit(a, auditlog.Entry{
				Timestamp: time.Now().UTC(),
				Action:    "close_session",
				Details:   fmt.Sprintf("variance %s", report.Variance.StringFixed(2)),
				SessionID: sessionID,
			})
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session id (required)")
	_ = cmd.MarkFlagRequired("session")
	cmd.Flags().StringVar(&adjustments, "adjustments", "", "manual correction amount")
	cmd.Flags().StringVar(&notes, "notes", "", "closing notes")

	return cmd
}

func newReconStatusCommand(configPath *string, verbose *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "List reconciliation sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath, *verbose)
			if err != nil {
				return err
			}
			defer a.close()

			sessions, err := a.st.SessionsByChurch(cmd.Context(), a.cfg.Church.ID)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Println("No sessions")
				return nil
			}
			for _, s := range sessions {
				fmt.Printf("%s  %s  %-12s  variance %s\n",
					s.ID, s.Month, s.Status, s.Variance.StringFixed(2))
			}
			return nil
		},
	}
	return cmd
}

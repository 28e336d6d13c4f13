package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/stewardbooks/steward/internal/funds"
	"github.com/stewardbooks/steward/internal/ledger"
	"github.com/stewardbooks/steward/internal/model"
)

func newTxnCommand(configPath *string, verbose *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "txn",
		Short: "Manage ledger transactions",
	}
	cmd.AddCommand(newTxnAddCommand(configPath, verbose))
	cmd.AddCommand(newTxnListCommand(configPath, verbose))
	cmd.AddCommand(newTxnPendingCommand(configPath, verbose))
	return cmd
}

func newTxnAddCommand(configPath *string, verbose *bool) *cobra.Command {
	var (
		date        string
		description string
		amount      string
		txnType     string
		reference   string
		fundID      string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a ledger transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath, *verbose)
			if err != nil {
				return err
			}
			defer a.close()

			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("parsing amount %q: %w", amount, err)
			}

			fundSvc, err := funds.Load(cmd.Context(), a.st, a.cfg.Church.ID)
			if err != nil {
				return err
			}

			svc := ledger.NewService(a.st, fundSvc, a.log)
			txn, err := svc.Add(cmd.Context(), ledger.AddParams{
				ChurchID:    a.cfg.Church.ID,
				Date:        date,
				Description: description,
				Amount:      amt,
				Type:        model.TransactionType(txnType),
				Reference:   reference,
				FundID:      fundID,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Recorded %s %s (%s) as %s\n", txn.Type, txn.Amount.StringFixed(2), txn.Date, txn.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "transaction date (required)")
	_ = cmd.MarkFlagRequired("date")
	cmd.Flags().StringVar(&description, "description", "", "description (required)")
	_ = cmd.MarkFlagRequired("description")
	cmd.Flags().StringVar(&amount, "amount", "", "positive amount (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&txnType, "type", "expense", "income or expense")
	cmd.Flags().StringVar(&reference, "reference", "", "bank reference")
	cmd.Flags().StringVar(&fundID, "fund", "", "fund id")

	return cmd
}

func newTxnListCommand(configPath *string, verbose *bool) *cobra.Command {
	var unreconciledOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath, *verbose)
			if err != nil {
				return err
			}
			defer a.close()

			svc := ledger.NewService(a.st, nil, a.log)
			var txns []model.LedgerTransaction
			if unreconciledOnly {
				txns, err = svc.Unreconciled(cmd.Context(), a.cfg.Church.ID)
			} else {
				txns, err = svc.List(cmd.Context(), a.cfg.Church.ID)
			}
			if err != nil {
				return err
			}

			for _, txn := range txns {
				flag := " "
				if txn.Reconciled {
					flag = "R"
				}
				fmt.Printf("%s %s  %-8s %10s  %s  %s\n",
					flag, txn.Date, txn.Type, txn.Amount.StringFixed(2), txn.ID, txn.Description)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&unreconciledOnly, "unreconciled", false, "only unreconciled transactions")
	return cmd
}

func newTxnPendingCommand(configPath *string, verbose *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending <transaction-id>",
		Short: "Mark a transaction as not yet cleared by the bank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath, *verbose)
			if err != nil {
				return err
			}
			defer a.close()

			svc := ledger.NewService(a.st, nil, a.log)
			pending, err := svc.MarkPending(cmd.Context(), a.cfg.Church.ID, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Marked transaction %s pending (%s)\n", args[0], pending.ID)
			return nil
		},
	}
	return cmd
}

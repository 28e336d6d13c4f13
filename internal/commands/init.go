package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stewardbooks/steward/internal/config"
	"github.com/stewardbooks/steward/internal/store"
)

func newInitCommand() *cobra.Command {
	var churchID string
	var churchName string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new steward data directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, churchID, churchName)
		},
	}

	cmd.Flags().StringVar(&churchID, "church-id", "", "church identifier (required)")
	_ = cmd.MarkFlagRequired("church-id")
	cmd.Flags().StringVar(&churchName, "church-name", "", "church display name")

	return cmd
}

func runInit(dir, churchID, churchName string) error {
	if err := os.MkdirAll(filepath.Join(dir, "logs"), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	cfg := config.Default(dir, churchID, churchName)
	if err := config.Save(filepath.Join(dir, config.DefaultFileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Create the database with its schema up front so the first real
	// command does not race an empty file.
	st, err := store.Open(cfg.Store.Path, nil)
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	if err := st.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}

	fmt.Printf("Initialized steward for %s in %s\n", churchID, dir)
	return nil
}

package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/stewardbooks/steward/internal/buildinfo"
	"github.com/stewardbooks/steward/internal/config"
	"github.com/stewardbooks/steward/internal/store"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:     "steward",
		Short:   "Small-charity ledger and bank reconciliation",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "steward.yaml", "path to steward.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand(&configPath, &verbose))
	rootCmd.AddCommand(newSuggestCommand(&configPath, &verbose))
	rootCmd.AddCommand(newReconCommand(&configPath, &verbose))
	rootCmd.AddCommand(newReportCommand(&configPath, &verbose))
	rootCmd.AddCommand(newTxnCommand(&configPath, &verbose))

	return rootCmd
}

// app bundles what every command needs once the config is loaded.
type app struct {
	cfg *config.Config
	st  *store.Store
	log *logrus.Logger
}

func (a *app) close() {
	if a.st != nil {
		_ = a.st.Close()
	}
}

func openApp(configPath string, verbose bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	dbPath := cfg.Store.Path
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(filepath.Dir(configPath), dbPath)
	}
	st, err := store.Open(dbPath, log)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, st: st, log: log}, nil
}

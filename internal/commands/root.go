package commands

import (
	"github.com/spf13/cobra"

	"github.com/exim-ops/ledgerrecon/internal/buildinfo"
	"github.com/exim-ops/ledgerrecon/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ledgerrecon",
		Short:   "Counterparty ledger reconciliation with overdue interest",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default ./"+config.FileName+" when present)")

	rootCmd.AddCommand(newReconcileCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

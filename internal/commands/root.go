package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/centavo-dev/centavo/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "centavo",
		Short:   "Personal finance ledger and statistics engine",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "centavo.yaml", "path to the configuration file")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newSalaryCommand())
	rootCmd.AddCommand(newPricesCommand())

	return rootCmd
}

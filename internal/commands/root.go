package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bote/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "bote",
		Short:   "Shared pot ledger for small groups",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.repo, "repo", ".", "project directory")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level from bote.yaml")

	rootCmd.AddCommand(
		newInitCommand(),
		newMemberCommand(opts),
		newTxCommand(opts),
		newBalanceCommand(opts),
		newReconcileCommand(opts),
	)

	return rootCmd
}

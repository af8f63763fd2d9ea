// Package main provides the entry point for the topsites CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for topsites.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topsites",
		Short: "Scan top-ranked web domains and rank them by word count",
		Long: `topsites fetches the landing pages of the top-ranked web domains,
counts the rendered words on each, and aggregates response headers and
fetch timings into a single report.

The ranked domain list is fetched once per day and cached locally;
credentials for the ranking source go in a .topsites config file or
the TOPSITES_ACCESS_KEY_ID / TOPSITES_SECRET_KEY environment variables.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

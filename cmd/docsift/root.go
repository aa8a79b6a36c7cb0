package main

import (
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "docsift",
	Short: "Docsift - IOC extraction and classification for documents",
	Long: `Docsift pulls indicators of compromise out of PDF and text documents.
It sweeps document text with a curated rule catalog to find hashes, domains,
URLs, email addresses, PII and other indicators, flags non-Latin scripts,
and validates domain candidates against the IANA TLD registry.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")

	// Add subcommands
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(tldsCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "eidolon",
	Short: "BURCH-EIDOLON deal-intelligence backend",
	Long: `BURCH-EIDOLON Unified CLI

Deal-intelligence dashboard backend: brand universe seeding, weekly
scoring, scenario stress tests, off-universe discovery, and report
generation.

Usage:
  go run ./cmd/eidolon [command]

Examples:
  go run ./cmd/eidolon api
  go run ./cmd/eidolon reseed --target-brands 200 --enrich-top-n 30
  go run ./cmd/eidolon simulate --brand-id brand-abc123 --preset tiktok_ban
  go run ./cmd/eidolon discover --industry "outdoor apparel"`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	reportBrandID  string
	reportTop      int
	reportSeedSize int
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate investment briefs",
	Long: `Seeds a universe and renders investment briefs to REPORTS_DIR.

With --brand-id, renders one brief. Otherwise renders briefs for the
top of the heat feed.

Example:
  go run ./cmd/eidolon report --top 10`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportBrandID, "brand-id", "", "single brand to report on")
	reportCmd.Flags().IntVar(&reportTop, "top", 20, "feed-top batch size")
	reportCmd.Flags().IntVar(&reportSeedSize, "universe-size", 60, "brands to seed before reporting")
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.manager.Reseed(cmd.Context(), reportSeedSize, 0); err != nil {
		return fmt.Errorf("seed universe: %w", err)
	}

	if reportBrandID != "" {
		artifact, err := a.composer.Generate(reportBrandID)
		if err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
		fmt.Printf("Report written to %s\n%s\n", artifact.Path, artifact.Summary)
		return nil
	}

	batch, err := a.composer.GenerateTopRanked(reportTop)
	if err != nil {
		return fmt.Errorf("generate report batch: %w", err)
	}
	fmt.Printf("Generated %d reports in %s\n", batch.Count, a.cfg.ReportsDir)
	return nil
}

package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	discoverIndustry string
	discoverRegion   string
	discoverLimit    int
)

// discoverCmd represents the discover command
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover off-universe companies via search providers",
	Long: `Runs the discovery query plan against the configured provider chain
and prints the opportunity report as JSON.

Example:
  go run ./cmd/eidolon discover --industry "outdoor apparel" --region US --limit 8`,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().StringVar(&discoverIndustry, "industry", "", "industry to search (required)")
	discoverCmd.Flags().StringVar(&discoverRegion, "region", "", "region filter")
	discoverCmd.Flags().IntVar(&discoverLimit, "limit", 0, "max candidates")
	discoverCmd.MarkFlagRequired("industry")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	response, err := a.reporter.Discover(cmd.Context(), discoverIndustry, discoverRegion, discoverLimit)
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(response)
}

package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hellogreencow/burch/internal/contracts"
	"github.com/hellogreencow/burch/internal/scenario"
)

var (
	simulateBrandID    string
	simulatePreset     string
	simulateSeed       int64
	simulateIterations int
	simulateSeedSize   int
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a scenario stress test against one brand",
	Long: `Seeds a universe, picks the requested brand (or the current feed
leader when --brand-id is omitted), and runs the preset simulation.

Example:
  go run ./cmd/eidolon simulate --preset tiktok_ban --seed 42 --iterations 2000`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVar(&simulateBrandID, "brand-id", "", "brand to stress (default: feed leader)")
	simulateCmd.Flags().StringVar(&simulatePreset, "preset", "", "scenario preset: "+strings.Join(scenario.PresetNames(), ", "))
	simulateCmd.Flags().Int64Var(&simulateSeed, "seed", scenario.DefaultSeed, "random seed")
	simulateCmd.Flags().IntVar(&simulateIterations, "iterations", scenario.DefaultIterations, "Monte Carlo iterations")
	simulateCmd.Flags().IntVar(&simulateSeedSize, "universe-size", 60, "brands to seed before simulating")
	simulateCmd.MarkFlagRequired("preset")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.manager.Reseed(cmd.Context(), simulateSeedSize, 0); err != nil {
		return fmt.Errorf("seed universe: %w", err)
	}

	brandID := simulateBrandID
	if brandID == "" {
		feed := a.manager.Feed(contracts.SortHeat, "", 1)
		if len(feed.Items) == 0 {
			return fmt.Errorf("universe is empty")
		}
		brandID = feed.Items[0].BrandID
	}

	card, err := a.manager.Scorecard(brandID)
	if err != nil {
		return fmt.Errorf("load scorecard: %w", err)
	}

	result, err := a.simulator.Run(card, contracts.SimulateRequest{
		BrandID:    brandID,
		Preset:     simulatePreset,
		Seed:       simulateSeed,
		Iterations: simulateIterations,
	})
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

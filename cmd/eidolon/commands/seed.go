package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	seedTargetBrands int
	seedEnrichTopN   int
)

// reseedCmd represents the reseed command
var reseedCmd = &cobra.Command{
	Use:   "reseed",
	Short: "Rebuild the brand universe from scratch",
	Long: `Discards all brands, signals and scorecards, then seeds a fresh
universe and scores every brand.

Example:
  go run ./cmd/eidolon reseed --target-brands 200 --enrich-top-n 30`,
	RunE: runReseed,
}

// refreshCmd represents the refresh command
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Incrementally refresh the brand universe",
	Long: `Tops the universe up toward the target size, appends a new week of
observations to every existing brand, and recomputes scorecards.

Example:
  go run ./cmd/eidolon refresh --target-brands 200 --enrich-top-n 30`,
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(reseedCmd)
	rootCmd.AddCommand(refreshCmd)

	for _, cmd := range []*cobra.Command{reseedCmd, refreshCmd} {
		cmd.Flags().IntVar(&seedTargetBrands, "target-brands", 0, "universe size (default TARGET_BRANDS)")
		cmd.Flags().IntVar(&seedEnrichTopN, "enrich-top-n", -1, "brands to enrich (default ENRICH_TOP_N)")
	}
}

func runReseed(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	target, enrich := seedDefaults(a)
	result, err := a.manager.Reseed(cmd.Context(), target, enrich)
	if err != nil {
		return fmt.Errorf("reseed: %w", err)
	}

	fmt.Printf("Reseeded %d brands (%d snapshots, %d failed)\n", result.Brands, result.Snapshots, result.Failed)
	return nil
}

func runRefresh(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	target, enrich := seedDefaults(a)
	result, err := a.manager.Refresh(cmd.Context(), target, enrich)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	fmt.Printf("Refreshed %d brands (%d created, %d updated, %d snapshots)\n",
		result.Brands, result.Created, result.Updated, result.Snapshots)
	return nil
}

func seedDefaults(a *app) (int, int) {
	target := seedTargetBrands
	if target <= 0 {
		target = a.cfg.TargetBrands
	}
	enrich := seedEnrichTopN
	if enrich < 0 {
		enrich = a.cfg.EnrichTopN
	}
	return target, enrich
}

package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hellogreencow/burch/internal/scheduler"
	"github.com/hellogreencow/burch/internal/scheduler/jobs"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the background worker",
	Long: `Starts the cron-driven worker.

Jobs:
  universe_refresh - incremental refresh on REFRESH_CRON
  report_batch     - daily briefs for the top of the heat feed

Example:
  go run ./cmd/eidolon worker`,
	RunE: runWorker,
}

var workerSeedFirst bool

func init() {
	rootCmd.AddCommand(workerCmd)

	workerCmd.Flags().BoolVar(&workerSeedFirst, "seed-first", true, "reseed the universe before scheduling")
}

func runWorker(cmd *cobra.Command, args []string) error {
	fmt.Println("=== BURCH-EIDOLON Worker ===")

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	// The refresh job tops up an existing universe; without an initial
	// seed there is nothing to refresh.
	if workerSeedFirst {
		if _, err := a.manager.Reseed(cmd.Context(), a.cfg.TargetBrands, a.cfg.EnrichTopN); err != nil {
			return fmt.Errorf("initial seed: %w", err)
		}
	}

	sched := scheduler.New(a.log)

	refreshJob := jobs.NewRefreshJob(a.manager, a.cfg.TargetBrands, a.cfg.EnrichTopN, a.cfg.RefreshCron, a.log)
	if err := sched.AddJob(refreshJob); err != nil {
		return fmt.Errorf("add refresh job: %w", err)
	}

	reportJob := jobs.NewReportBatchJob(a.composer, 20, a.log)
	if err := sched.AddJob(reportJob); err != nil {
		return fmt.Errorf("add report job: %w", err)
	}

	sched.Start()
	fmt.Println("Worker running. Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hellogreencow/burch/internal/api"
	"github.com/hellogreencow/burch/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                     - Health check
  GET  /v1/feed                    - Ranked brand feed
  GET  /v1/brand/{id}              - Full brand profile
  GET  /v1/brand/{id}/timeseries   - Signal history
  POST /v1/simulate                - Scenario stress test
  POST /v1/report                  - Investment brief
  POST /v1/report/top              - Briefs for the feed top
  GET  /v1/discover                - Off-universe discovery
  POST /v1/chat                    - Grounded diligence chat
  POST /v1/admin/reseed            - Rebuild the universe
  POST /v1/admin/refresh           - Incremental refresh
  GET  /v1/admin/budget            - Provider spend state
  GET  /v1/live                    - Websocket refresh events

Example:
  go run ./cmd/eidolon api
  go run ./cmd/eidolon api --port 8089 --seed-on-start`,
	RunE: runAPIServer,
}

var (
	apiPort     string
	seedOnStart bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
	apiCmd.Flags().BoolVar(&seedOnStart, "seed-on-start", false, "reseed the universe before serving")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== BURCH-EIDOLON API Server ===")

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	hub := api.NewLiveHub(a.log)
	a.manager.SetNotifier(hub)

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	if seedOnStart {
		a.log.Info("Seeding universe before serving")
		if _, err := a.manager.Reseed(cmd.Context(), a.cfg.TargetBrands, a.cfg.EnrichTopN); err != nil {
			return fmt.Errorf("seed on start: %w", err)
		}
	}

	router := api.NewRouter(api.Handlers{
		Universe:  handlers.NewUniverseHandler(a.manager, a.log),
		Admin:     handlers.NewAdminHandler(a.manager, a.providers, a.log, a.cfg.TargetBrands, a.cfg.EnrichTopN),
		Scenario:  handlers.NewScenarioHandler(a.manager, a.simulator, a.log),
		Report:    handlers.NewReportHandler(a.composer, a.log),
		Discovery: handlers.NewDiscoveryHandler(a.reporter, a.log),
		Chat:      handlers.NewChatHandler(a.chat, a.log),
		Live:      hub,
	}, a.log)

	server := api.New(a.cfg, a.log, router)

	go func() {
		if err := server.Start(); err != nil {
			a.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	a.log.Info("API server started successfully")
	fmt.Printf("\nServer running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	a.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}

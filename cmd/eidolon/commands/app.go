package commands

import (
	"context"
	"fmt"

	"github.com/hellogreencow/burch/internal/chat"
	"github.com/hellogreencow/burch/internal/discovery"
	"github.com/hellogreencow/burch/internal/enrich"
	"github.com/hellogreencow/burch/internal/providers"
	"github.com/hellogreencow/burch/internal/report"
	"github.com/hellogreencow/burch/internal/scenario"
	"github.com/hellogreencow/burch/internal/scoring"
	"github.com/hellogreencow/burch/internal/store"
	"github.com/hellogreencow/burch/internal/universe"
	"github.com/hellogreencow/burch/pkg/config"
	"github.com/hellogreencow/burch/pkg/database"
	"github.com/hellogreencow/burch/pkg/httputil"
	"github.com/hellogreencow/burch/pkg/logger"
	"github.com/hellogreencow/burch/pkg/redis"
)

// app wires every service the commands share. Optional collaborators
// (archive, redis, live hub) stay nil when not configured.
type app struct {
	cfg *config.Config
	log *logger.Logger

	db          *database.DB
	redisClient *redis.Client

	store     *store.Store
	manager   *universe.Manager
	simulator *scenario.Simulator
	composer  *report.Composer
	chat      *chat.Service
	reporter  *discovery.Reporter
	providers *providers.Router
}

// buildApp constructs the shared service graph. The live hub, when the
// caller runs one, is attached afterwards via Manager.SetNotifier.
func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	a := &app{cfg: cfg, log: log}

	// Optional scorecard archive.
	var archive *store.Archive
	if cfg.ArchiveEnabled() {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
		archive = store.NewArchive(db, log)
		if err := archive.EnsureSchema(context.Background()); err != nil {
			a.Close()
			return nil, fmt.Errorf("ensure archive schema: %w", err)
		}
		log.Info("Scorecard archive enabled")
	}

	// Optional provider-result cache.
	redisClient, err := redis.New(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.redisClient = redisClient
	var cache *redis.Cache
	if redisClient.Enabled() {
		cache = redis.NewCache(redisClient, "eidolon")
		log.Info("Provider result cache enabled")
	}

	httpClient := httputil.New(log)

	a.providers = providers.NewRouter(cfg.Providers, log, httpClient, cache)
	a.reporter = discovery.NewReporter(a.providers, log)

	a.store = store.New(log)
	engine := scoring.NewEngine(log)
	fetcher := enrich.NewFetcher(httpClient, log)

	a.manager = universe.NewManager(a.store, engine, log, universe.Options{
		Archive: archive,
		Router:  a.providers,
		Fetcher: fetcher,
	})

	a.simulator = scenario.NewSimulator(log)
	a.composer = report.NewComposer(a.manager, a.store, log, cfg.ReportsDir)
	a.chat = chat.NewService(a.manager, cfg.OpenAIAPIKey, log)

	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redisClient != nil {
		a.redisClient.Close()
	}
}

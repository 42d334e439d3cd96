package providers

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hellogreencow/burch/internal/contracts"
	"github.com/hellogreencow/burch/pkg/config"
	"github.com/hellogreencow/burch/pkg/httputil"
	"github.com/hellogreencow/burch/pkg/logger"
	"github.com/hellogreencow/burch/pkg/redis"
)

// budgetState tracks query spend across the current day and month.
type budgetState struct {
	day          time.Time
	monthYear    int
	month        time.Month
	dailyQueries int
	monthlySpend float64
}

func (b *budgetState) refresh(now time.Time) {
	today := now.Truncate(24 * time.Hour)
	if !today.Equal(b.day) {
		b.day = today
		b.dailyQueries = 0
	}
	if now.Year() != b.monthYear || now.Month() != b.month {
		b.monthYear = now.Year()
		b.month = now.Month()
		b.monthlySpend = 0
	}
}

// BudgetSnapshot is the current spend state exposed on the ops surface.
type BudgetSnapshot struct {
	DailyQueries int     `json:"daily_queries"`
	DailyLimit   int     `json:"daily_limit"`
	MonthlySpend float64 `json:"monthly_spend"`
	MonthlyLimit float64 `json:"monthly_limit"`
}

// Router iterates capability-equivalent providers in cost/quality order
// until one returns results, recording every attempt. Budget limits gate
// each provider before it is tried.
type Router struct {
	cfg   config.ProviderConfig
	log   *logger.Logger
	cache *redis.Cache

	mu        sync.Mutex
	state     budgetState
	providers []SearchProvider
	now       func() time.Time
}

func NewRouter(cfg config.ProviderConfig, log *logger.Logger, client *httputil.Client, cache *redis.Cache) *Router {
	return &Router{
		cfg:   cfg,
		log:   log,
		cache: cache,
		now:   time.Now,
		providers: []SearchProvider{
			NewSearXNG(cfg.SearXNGBaseURL, cfg.SearXNGEngines, client),
			NewPaidProvider("brave", cfg.BraveAPIKey, 0.003, 0.84, 0.84),
			NewPaidProvider("serpapi", cfg.SerpAPIKey, 0.01, 0.9, 0.88),
			NewPaidProvider("google_cse", cfg.GoogleCSEAPIKey, 0.005, 0.85, 0.85),
			NewPaidProvider("opencorporates", cfg.OpenCorporatesAPIKey, 0.002, 0.8, 0.65),
		},
	}
}

// NewRouterWithProviders builds a router over an explicit provider chain.
func NewRouterWithProviders(cfg config.ProviderConfig, log *logger.Logger, chain ...SearchProvider) *Router {
	return &Router{cfg: cfg, log: log, now: time.Now, providers: chain}
}

// ranked returns the enabled providers ordered by cost per unit of
// quality, cheapest-best first.
func (r *Router) ranked() []SearchProvider {
	enabled := make([]SearchProvider, 0, len(r.providers))
	for _, p := range r.providers {
		if p.Enabled() {
			enabled = append(enabled, p)
		}
	}
	score := func(p SearchProvider) float64 {
		quality := p.Reliability()*0.6 + p.Freshness()*0.4
		if quality < 0.01 {
			quality = 0.01
		}
		return p.CostPerQuery() / quality
	}
	sort.SliceStable(enabled, func(i, j int) bool { return score(enabled[i]) < score(enabled[j]) })
	return enabled
}

func (r *Router) budgetAvailable(p SearchProvider) bool {
	r.state.refresh(r.now())
	if r.state.dailyQueries >= r.cfg.DailyQueryBudget {
		return false
	}
	if r.state.monthlySpend+p.CostPerQuery() > r.cfg.MonthlySpendLimitUSD {
		return false
	}
	return true
}

type cachedSearch struct {
	Provider string         `json:"provider"`
	Results  []SearchResult `json:"results"`
}

// Search walks the fallback chain for one query. It returns the winning
// provider name, its results, and the full attempt trace. When every
// provider fails or is skipped, err is a DiscoveryUnavailableError
// carrying the trace.
func (r *Router) Search(ctx context.Context, query string, limit int) (string, []SearchResult, []contracts.ProviderAttempt, error) {
	cacheKey := fmt.Sprintf("search:%s:%d", query, limit)
	if r.cache != nil {
		var hit cachedSearch
		if ok, err := r.cache.Get(ctx, cacheKey, &hit); err == nil && ok {
			return hit.Provider, hit.Results, []contracts.ProviderAttempt{{Provider: hit.Provider + " (cached)"}}, nil
		}
	}

	// The lock covers only budget bookkeeping. Provider calls run outside
	// it so one slow upstream never serializes concurrent searches.
	var attempts []contracts.ProviderAttempt
	for _, p := range r.ranked() {
		r.mu.Lock()
		withinBudget := r.budgetAvailable(p)
		r.mu.Unlock()
		if !withinBudget {
			attempts = append(attempts, contracts.ProviderAttempt{Provider: p.Name(), Err: "budget exhausted"})
			continue
		}
		results, err := p.Search(ctx, query, limit)
		if err != nil {
			attempts = append(attempts, contracts.ProviderAttempt{Provider: p.Name(), Err: err.Error()})
			if r.log != nil {
				r.log.WithError(err).WithField("provider", p.Name()).Warn("search provider failed")
			}
			continue
		}
		if len(results) == 0 {
			attempts = append(attempts, contracts.ProviderAttempt{Provider: p.Name(), Err: "no results"})
			continue
		}

		r.mu.Lock()
		r.state.refresh(r.now())
		r.state.dailyQueries++
		r.state.monthlySpend += p.CostPerQuery()
		r.mu.Unlock()
		attempts = append(attempts, contracts.ProviderAttempt{Provider: p.Name()})

		if r.cache != nil {
			if err := r.cache.Set(ctx, cacheKey, cachedSearch{Provider: p.Name(), Results: results}, 15*time.Minute); err != nil && r.log != nil {
				r.log.WithError(err).Debug("search cache write failed")
			}
		}
		return p.Name(), results, attempts, nil
	}

	return "", nil, attempts, &contracts.DiscoveryUnavailableError{Query: query, Attempts: attempts}
}

// Budget reports the current spend counters.
func (r *Router) Budget() BudgetSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.refresh(r.now())
	return BudgetSnapshot{
		DailyQueries: r.state.dailyQueries,
		DailyLimit:   r.cfg.DailyQueryBudget,
		MonthlySpend: r.state.monthlySpend,
		MonthlyLimit: r.cfg.MonthlySpendLimitUSD,
	}
}

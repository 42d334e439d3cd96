package universe

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellogreencow/burch/internal/contracts"
	"github.com/hellogreencow/burch/internal/enrich"
	"github.com/hellogreencow/burch/internal/providers"
	"github.com/hellogreencow/burch/internal/scoring"
	"github.com/hellogreencow/burch/internal/store"
	"github.com/hellogreencow/burch/pkg/config"
	"github.com/hellogreencow/burch/pkg/httputil"
	"github.com/hellogreencow/burch/pkg/logger"
)

func newTestManager(t *testing.T, seed int64) *Manager {
	t.Helper()
	log := logger.NewNop()
	return NewManager(store.New(log), scoring.NewEngine(log), log, Options{
		Rand: rand.New(rand.NewSource(seed)),
	})
}

var allSortKeys = []contracts.SortKey{
	contracts.SortHeat,
	contracts.SortAsymmetry,
	contracts.SortRisk,
	contracts.SortRevenue,
	contracts.SortCapitalRequired,
}

func TestManager_ReseedFeedInvariants(t *testing.T) {
	m := newTestManager(t, 11)

	result, err := m.Reseed(context.Background(), 60, 20)
	require.NoError(t, err)
	assert.Equal(t, 60, result.Brands)
	assert.Equal(t, 60, result.Created)
	assert.Equal(t, 60, result.Snapshots)
	assert.Zero(t, result.Failed)

	for _, key := range allSortKeys {
		feed := m.Feed(key, "", 200)
		require.LessOrEqual(t, len(feed.Items), 60, "sort=%s", key)
		require.Len(t, feed.Items, 60, "sort=%s", key)

		names := make(map[string]bool)
		for i, item := range feed.Items {
			assert.Equal(t, i+1, item.Rank, "ranks must be contiguous for sort=%s", key)
			assert.False(t, names[item.Name], "duplicate name %q under sort=%s", item.Name, key)
			names[item.Name] = true
		}
	}
}

func TestManager_FeedSortDirectionAndStableSet(t *testing.T) {
	m := newTestManager(t, 3)
	_, err := m.Reseed(context.Background(), 40, 0)
	require.NoError(t, err)

	baseline := m.Feed(contracts.SortHeat, "", 200)
	baseIDs := make(map[string]bool)
	for _, item := range baseline.Items {
		baseIDs[item.BrandID] = true
	}

	riskFeed := m.Feed(contracts.SortRisk, "", 200)
	require.Len(t, riskFeed.Items, len(baseline.Items))
	for i := 1; i < len(riskFeed.Items); i++ {
		assert.GreaterOrEqual(t, riskFeed.Items[i-1].RiskScore, riskFeed.Items[i].RiskScore)
	}
	for _, item := range riskFeed.Items {
		assert.True(t, baseIDs[item.BrandID], "changing sort must not change the item set")
	}

	heatSorted := m.Feed(contracts.SortHeat, "", 200)
	for i := 1; i < len(heatSorted.Items); i++ {
		assert.GreaterOrEqual(t, heatSorted.Items[i-1].HeatScore, heatSorted.Items[i].HeatScore)
	}
}

func TestManager_ReseedTwiceInternallyUnique(t *testing.T) {
	m := newTestManager(t, 5)

	for round := 0; round < 2; round++ {
		_, err := m.Reseed(context.Background(), 30, 0)
		require.NoError(t, err)

		feed := m.Feed(contracts.SortHeat, "", 200)
		require.Len(t, feed.Items, 30)
		names := make(map[string]bool)
		for _, item := range feed.Items {
			assert.False(t, names[item.Name], "round %d: duplicate %q", round, item.Name)
			names[item.Name] = true
		}
	}
}

func TestManager_RefreshTopsUp(t *testing.T) {
	m := newTestManager(t, 9)

	_, err := m.Reseed(context.Background(), 10, 0)
	require.NoError(t, err)

	before := m.Feed(contracts.SortHeat, "", 200)
	require.Len(t, before.Items, 10)

	result, err := m.Refresh(context.Background(), 15, 0)
	require.NoError(t, err)
	assert.Equal(t, 15, result.Brands)
	assert.Equal(t, 5, result.Created)
	assert.Equal(t, 10, result.Updated)

	after := m.Feed(contracts.SortHeat, "", 200)
	require.Len(t, after.Items, 15)

	// Existing brands survive a refresh.
	afterIDs := make(map[string]bool)
	for _, item := range after.Items {
		afterIDs[item.BrandID] = true
	}
	for _, item := range before.Items {
		assert.True(t, afterIDs[item.BrandID], "refresh must not drop %s", item.BrandID)
	}
}

func TestManager_ReseedExhaustionReturnsSeedError(t *testing.T) {
	log := logger.NewNop()
	m := NewManager(store.New(log), scoring.NewEngine(log), log, Options{
		Rand: rand.New(rand.NewSource(1)),
		Namer: NamerConfig{
			Adjectives:  []string{"Alpine"},
			Nouns:       []string{"Goods"},
			Qualifiers:  []string{"North"},
			MaxAttempts: 2,
		},
	})

	_, err := m.Reseed(context.Background(), 5, 0)
	var seedErr *contracts.SeedError
	require.ErrorAs(t, err, &seedErr)
	assert.Equal(t, 5, seedErr.Requested)
	assert.Less(t, seedErr.Generated, 5)
}

func TestManager_InvalidSeedParams(t *testing.T) {
	m := newTestManager(t, 1)

	var paramErr *contracts.InvalidParameterError
	_, err := m.Reseed(context.Background(), 0, 0)
	require.ErrorAs(t, err, &paramErr)

	_, err = m.Refresh(context.Background(), 10, -1)
	require.ErrorAs(t, err, &paramErr)
}

func TestManager_FeedSearchFilter(t *testing.T) {
	m := newTestManager(t, 21)
	_, err := m.Reseed(context.Background(), 25, 0)
	require.NoError(t, err)

	full := m.Feed(contracts.SortHeat, "", 200)
	require.NotEmpty(t, full.Items)

	target := full.Items[0]
	filtered := m.Feed(contracts.SortHeat, target.Name, 200)
	require.NotEmpty(t, filtered.Items)
	assert.Equal(t, 1, filtered.Items[0].Rank, "ranks are recomputed over the filtered set")
	found := false
	for _, item := range filtered.Items {
		if item.BrandID == target.BrandID {
			found = true
		}
	}
	assert.True(t, found)

	none := m.Feed(contracts.SortHeat, "zzzzzz-no-such-brand", 200)
	assert.Empty(t, none.Items)
}

func TestManager_ProfileAndTimeseries(t *testing.T) {
	m := newTestManager(t, 4)
	_, err := m.Reseed(context.Background(), 8, 8)
	require.NoError(t, err)

	feed := m.Feed(contracts.SortHeat, "", 200)
	require.NotEmpty(t, feed.Items)
	brandID := feed.Items[0].BrandID

	profile, err := m.Profile(brandID)
	require.NoError(t, err)
	assert.Equal(t, brandID, profile.Brand.ID)
	assert.GreaterOrEqual(t, profile.Scorecard.Confidence, scoring.ConfidenceFloor)
	assert.LessOrEqual(t, profile.Scorecard.Confidence, scoring.ConfidenceCeil)
	assert.NotEmpty(t, profile.ProductionOptions)
	assert.NotEmpty(t, profile.CostReductionOpportunities)
	assert.NotEmpty(t, profile.MemoPreview)
	assert.NotEmpty(t, profile.Evidence)

	series, err := m.Timeseries(brandID, "", 0)
	require.NoError(t, err)
	assert.Equal(t, brandID, series.BrandID)
	assert.NotEmpty(t, series.Points)

	windowed, err := m.Timeseries(brandID, scoring.MetricInstagramVelocity, 52)
	require.NoError(t, err)
	require.NotEmpty(t, windowed.Points)
	assert.Less(t, len(windowed.Points), len(series.Points))
	for _, p := range windowed.Points {
		assert.Equal(t, scoring.MetricInstagramVelocity, p.Metric)
	}

	var notFound *contracts.NotFoundError
	_, err = m.Profile("brand-missing")
	require.ErrorAs(t, err, &notFound)
	_, err = m.Timeseries("brand-missing", "", 0)
	require.ErrorAs(t, err, &notFound)
	_, err = m.Scorecard("brand-missing")
	require.ErrorAs(t, err, &notFound)
}

type captureNotifier struct {
	events []UniverseEvent
}

func (c *captureNotifier) PublishUniverseEvent(event UniverseEvent) {
	c.events = append(c.events, event)
}

func TestManager_NotifierReceivesBatchEvents(t *testing.T) {
	log := logger.NewNop()
	notifier := &captureNotifier{}
	m := NewManager(store.New(log), scoring.NewEngine(log), log, Options{
		Rand:     rand.New(rand.NewSource(2)),
		Notifier: notifier,
	})

	_, err := m.Reseed(context.Background(), 5, 0)
	require.NoError(t, err)
	_, err = m.Refresh(context.Background(), 6, 0)
	require.NoError(t, err)

	require.Len(t, notifier.events, 2)
	assert.Equal(t, "reseed", notifier.events[0].Type)
	assert.Equal(t, "refresh", notifier.events[1].Type)
	assert.Equal(t, 6, notifier.events[1].Brands)
	assert.Equal(t, 1, notifier.events[1].Created)
}

type seedSearchProvider struct {
	results []providers.SearchResult
}

func (p *seedSearchProvider) Name() string          { return "seed" }
func (p *seedSearchProvider) CostPerQuery() float64 { return 0 }
func (p *seedSearchProvider) Reliability() float64  { return 0.8 }
func (p *seedSearchProvider) Freshness() float64    { return 0.8 }
func (p *seedSearchProvider) Enabled() bool         { return true }

func (p *seedSearchProvider) Search(ctx context.Context, query string, limit int) ([]providers.SearchResult, error) {
	return p.results, nil
}

func TestManager_ReseedSeedsFromDiscoveredCandidates(t *testing.T) {
	provider := &seedSearchProvider{results: []providers.SearchResult{
		{Title: "Cedar Peak Supply - founder-led growth story", URL: "https://news.example.com/cedar", Snippet: "expansion", Source: "news"},
		{Title: "Marlowe Botanics - retail expansion continues", URL: "https://news.example.com/marlowe", Snippet: "launch", Source: "news"},
	}}
	router := providers.NewRouterWithProviders(
		config.ProviderConfig{DailyQueryBudget: 100, MonthlySpendLimitUSD: 50},
		logger.NewNop(), provider,
	)

	log := logger.NewNop()
	m := NewManager(store.New(log), scoring.NewEngine(log), log, Options{
		Rand:   rand.New(rand.NewSource(9)),
		Router: router,
	})

	result, err := m.Reseed(context.Background(), 6, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, result.Brands)

	feed := m.Feed(contracts.SortHeat, "", 10)
	require.Len(t, feed.Items, 6)

	names := make(map[string]bool)
	for _, item := range feed.Items {
		names[item.Name] = true
	}
	assert.True(t, names["Cedar Peak Supply"], "discovered candidate missing from universe: %v", names)
	assert.True(t, names["Marlowe Botanics"], "discovered candidate missing from universe: %v", names)
}

func TestManager_EnrichBrandReadsStorefront(t *testing.T) {
	handler := http.NewServeMux()
	handler.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Alpine Goods</title>`+
			`<meta name="description" content="Technical outdoor gear built in small batches."></head><body></body></html>`)
	})
	handler.HandleFunc("/products.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"products":[`+
			`{"variants":[{"price":"42.00"}]},`+
			`{"variants":[{"price":"58.00"}]},`+
			`{"variants":[{"price":"66.00"}]}]}`)
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	log := logger.NewNop()
	fetcher := enrich.NewFetcher(httputil.New(log).DisableRetry(), log)
	m := NewManager(store.New(log), scoring.NewEngine(log), log, Options{
		Rand:    rand.New(rand.NewSource(3)),
		Fetcher: fetcher,
	})

	_, err := m.Reseed(context.Background(), 3, 0)
	require.NoError(t, err)

	brand := m.store.Brands()[0]
	brand.Website = server.URL
	m.store.PutBrand(brand)

	catalogObserved := m.enrichBrand(context.Background(), brand)
	assert.True(t, catalogObserved)

	stored, ok := m.store.Brand(brand.ID)
	require.True(t, ok)
	assert.Equal(t, "Technical outdoor gear built in small batches.", stored.Description)

	latest := m.store.LatestByMetric(brand.ID)
	require.Contains(t, latest, scoring.MetricSKUCount)
	assert.Equal(t, 3.0, latest[scoring.MetricSKUCount].Value)
	require.Contains(t, latest, scoring.MetricMedianPriceUSD)
	assert.Equal(t, 58.0, latest[scoring.MetricMedianPriceUSD].Value)

	m.scoreBrand(context.Background(), stored, catalogObserved, m.now())
	profile, err := m.Profile(brand.ID)
	require.NoError(t, err)
	assert.Equal(t, 58.0, profile.FinancialInference.AverageOrderValueUSD)
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellogreencow/burch/internal/api/handlers"
	"github.com/hellogreencow/burch/internal/chat"
	"github.com/hellogreencow/burch/internal/contracts"
	"github.com/hellogreencow/burch/internal/report"
	"github.com/hellogreencow/burch/internal/scenario"
	"github.com/hellogreencow/burch/internal/scoring"
	"github.com/hellogreencow/burch/internal/store"
	"github.com/hellogreencow/burch/internal/universe"
	"github.com/hellogreencow/burch/pkg/logger"
)

type testEnv struct {
	server  *httptest.Server
	manager *universe.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.NewNop()
	st := store.New(log)
	manager := universe.NewManager(st, scoring.NewEngine(log), log, universe.Options{
		Rand: rand.New(rand.NewSource(23)),
	})
	_, err := manager.Reseed(context.Background(), 20, 5)
	require.NoError(t, err)

	router := NewRouter(Handlers{
		Universe: handlers.NewUniverseHandler(manager, log),
		Admin:    handlers.NewAdminHandler(manager, nil, log, 20, 5),
		Scenario: handlers.NewScenarioHandler(manager, scenario.NewSimulator(log), log),
		Report:   handlers.NewReportHandler(report.NewComposer(manager, st, log, t.TempDir()), log),
		// No providers configured in tests, so discovery stays in its
		// unavailable state.
		Discovery: handlers.NewDiscoveryHandler(nil, log),
		Chat:      handlers.NewChatHandler(chat.NewService(manager, "", log), log),
	}, log)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testEnv{server: server, manager: manager}
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(e.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func (e *testEnv) post(t *testing.T, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(e.server.URL+path, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func (e *testEnv) topBrandID(t *testing.T) string {
	t.Helper()
	feed := e.manager.Feed(contracts.SortHeat, "", 1)
	require.NotEmpty(t, feed.Items)
	return feed.Items[0].BrandID
}

func TestAPI_Health(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]string
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "eidolon-api", health["service"])
}

func TestAPI_FeedRanksContiguously(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/v1/feed?sort=heat")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var feed contracts.FeedResponse
	require.NoError(t, json.Unmarshal(body, &feed))
	assert.Equal(t, contracts.SortHeat, feed.Sort)
	require.Len(t, feed.Items, 20)
	for i, item := range feed.Items {
		assert.Equal(t, i+1, item.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, feed.Items[i-1].HeatScore, item.HeatScore)
		}
	}
}

func TestAPI_FeedRejectsBadParams(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.get(t, "/v1/feed?sort=velocity")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.get(t, "/v1/feed?limit=-3")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_BrandProfileAndTimeseries(t *testing.T) {
	env := newTestEnv(t)
	brandID := env.topBrandID(t)

	resp, body := env.get(t, "/v1/brand/"+brandID)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var profile contracts.BrandProfile
	require.NoError(t, json.Unmarshal(body, &profile))
	assert.Equal(t, brandID, profile.Brand.ID)
	assert.NotEmpty(t, profile.MemoPreview)

	resp, _ = env.get(t, "/v1/brand/"+brandID+"/timeseries")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.get(t, "/v1/brand/brand-missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_TimeseriesMetricFilter(t *testing.T) {
	env := newTestEnv(t)
	brandID := env.topBrandID(t)

	resp, body := env.get(t, "/v1/brand/"+brandID+"/timeseries")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var full contracts.TimeSeriesResponse
	require.NoError(t, json.Unmarshal(body, &full))
	require.NotEmpty(t, full.Points)
	metric := full.Points[0].Metric

	resp, body = env.get(t, "/v1/brand/"+brandID+"/timeseries?metric="+metric+"&weeks=52")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var filtered contracts.TimeSeriesResponse
	require.NoError(t, json.Unmarshal(body, &filtered))
	require.NotEmpty(t, filtered.Points)
	assert.Less(t, len(filtered.Points), len(full.Points))
	for _, p := range filtered.Points {
		assert.Equal(t, metric, p.Metric)
	}

	resp, _ = env.get(t, "/v1/brand/"+brandID+"/timeseries?weeks=zero")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_SimulateDeterministicOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	brandID := env.topBrandID(t)

	req := contracts.SimulateRequest{BrandID: brandID, Preset: "tiktok_ban", Seed: 99, Iterations: 500}

	var first, second contracts.ScenarioResult
	resp, body := env.post(t, "/v1/simulate", req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &first))

	resp, body = env.post(t, "/v1/simulate", req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &second))

	assert.Equal(t, first, second)
	assert.Equal(t, int64(99), first.Seed)
	assert.LessOrEqual(t, first.StressedRisk, 98.0)
}

func TestAPI_SimulateErrors(t *testing.T) {
	env := newTestEnv(t)
	brandID := env.topBrandID(t)

	resp, _ := env.post(t, "/v1/simulate", contracts.SimulateRequest{BrandID: brandID, Preset: "asteroid_strike"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.post(t, "/v1/simulate", contracts.SimulateRequest{BrandID: "brand-missing", Preset: "tiktok_ban"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_ReportGeneration(t *testing.T) {
	env := newTestEnv(t)
	brandID := env.topBrandID(t)

	resp, body := env.post(t, "/v1/report", map[string]string{"brand_id": brandID})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var artifact contracts.ReportArtifact
	require.NoError(t, json.Unmarshal(body, &artifact))
	assert.Equal(t, brandID, artifact.BrandID)
	assert.Contains(t, artifact.Summary, "cost-down")

	resp, _ = env.post(t, "/v1/report", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.post(t, "/v1/report/top", map[string]int{"limit": 3})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var batch contracts.ReportBatchArtifact
	require.NoError(t, json.Unmarshal(body, &batch))
	assert.Equal(t, 3, batch.Count)
}

func TestAPI_AdminReseedAndRefresh(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.post(t, "/v1/admin/reseed?target_brands=10&enrich_top_n=2", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var seed handlers.SeedResponse
	require.NoError(t, json.Unmarshal(body, &seed))
	assert.Equal(t, "success", seed.Status)
	assert.Equal(t, 10, seed.Brands)
	assert.Equal(t, 10, seed.Created)

	resp, body = env.post(t, "/v1/admin/refresh?target_brands=12&enrich_top_n=2", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &seed))
	assert.Equal(t, 12, seed.Brands)
	assert.Equal(t, 2, seed.Created)
	assert.Equal(t, 10, seed.Updated)

	resp, _ = env.post(t, "/v1/admin/reseed?target_brands=0", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_BudgetUnavailableWithoutProviders(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.get(t, "/v1/admin/budget")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAPI_DiscoverUnavailableWithoutProviders(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.get(t, "/v1/discover?industry=outdoor+apparel")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAPI_ChatFallback(t *testing.T) {
	env := newTestEnv(t)
	brandID := env.topBrandID(t)

	resp, body := env.post(t, "/v1/chat", contracts.ChatRequest{
		BrandID:  brandID,
		Mode:     "analysis",
		Messages: []contracts.ChatMessage{{Role: "user", Content: "Summarize."}},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var chatResp contracts.ChatResponse
	require.NoError(t, json.Unmarshal(body, &chatResp))
	assert.Equal(t, "fallback-profile-grounded", chatResp.Model)
	assert.NotEmpty(t, chatResp.Answer)
}

func TestAPI_UnknownRouteIs404(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.get(t, "/v1/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellogreencow/burch/internal/contracts"
	"github.com/hellogreencow/burch/internal/providers"
	"github.com/hellogreencow/burch/internal/scoring"
	"github.com/hellogreencow/burch/pkg/config"
	"github.com/hellogreencow/burch/pkg/logger"
)

type laneProvider struct {
	name   string
	search func(query string, limit int) ([]providers.SearchResult, error)
}

func (p *laneProvider) Name() string          { return p.name }
func (p *laneProvider) CostPerQuery() float64 { return 0 }
func (p *laneProvider) Reliability() float64  { return 0.8 }
func (p *laneProvider) Freshness() float64    { return 0.8 }
func (p *laneProvider) Enabled() bool         { return true }

func (p *laneProvider) Search(ctx context.Context, query string, limit int) ([]providers.SearchResult, error) {
	return p.search(query, limit)
}

func syntheticResults(query string, limit int) ([]providers.SearchResult, error) {
	out := make([]providers.SearchResult, 0, limit)
	for i := 0; i < limit; i++ {
		brand := fmt.Sprintf("Summit Trail Co %s-%d", strings.Fields(query)[0], i)
		out = append(out, providers.SearchResult{
			Title:   fmt.Sprintf("%s - outdoor apparel brand posts record growth", brand),
			URL:     fmt.Sprintf("https://news.example.com/%s/%d", strings.Fields(query)[0], i),
			Snippet: "The founder-led company raised a round and announced retail expansion and viral momentum.",
			Source:  "news",
		})
	}
	return out, nil
}

func newTestReporter(search func(query string, limit int) ([]providers.SearchResult, error)) *Reporter {
	cfg := config.ProviderConfig{DailyQueryBudget: 100, MonthlySpendLimitUSD: 50}
	router := providers.NewRouterWithProviders(cfg, logger.NewNop(), &laneProvider{name: "news", search: search})
	return NewReporter(router, logger.NewNop())
}

func TestReporter_DiscoverProducesBoundedReports(t *testing.T) {
	r := newTestReporter(syntheticResults)

	resp, err := r.Discover(context.Background(), "outdoor apparel", "US", 8)
	require.NoError(t, err)

	assert.Equal(t, "outdoor apparel", resp.Industry)
	assert.NotEmpty(t, resp.Items)
	assert.LessOrEqual(t, len(resp.Items), 8)
	assert.NotEmpty(t, resp.ProviderAttempts)
	require.NotEmpty(t, resp.Report.CompanyReports)
	assert.LessOrEqual(t, len(resp.Report.CompanyReports), 8)
	assert.NotEmpty(t, resp.Report.Narrative)
	assert.NotEmpty(t, resp.Report.TopSignals)
}

func TestReporter_ConfidenceBelowScorecardFloor(t *testing.T) {
	r := newTestReporter(syntheticResults)

	resp, err := r.Discover(context.Background(), "outdoor apparel", "", 10)
	require.NoError(t, err)

	for _, report := range resp.Report.CompanyReports {
		assert.GreaterOrEqual(t, report.Confidence, confidenceFloor)
		assert.LessOrEqual(t, report.Confidence, confidenceCeil)
		assert.Less(t, report.Confidence, scoring.ConfidenceFloor,
			"discovery briefs must never look as trustworthy as first-party scorecards")
	}
}

func TestReporter_ReportsSortedByFit(t *testing.T) {
	r := newTestReporter(syntheticResults)

	resp, err := r.Discover(context.Background(), "outdoor apparel", "", 10)
	require.NoError(t, err)

	reports := resp.Report.CompanyReports
	for i := 1; i < len(reports); i++ {
		assert.GreaterOrEqual(t, reports[i-1].FitScore, reports[i].FitScore)
	}
}

func TestReporter_EmptyIndustryRejected(t *testing.T) {
	r := newTestReporter(syntheticResults)

	_, err := r.Discover(context.Background(), "   ", "", 10)
	var invalid *contracts.InvalidParameterError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "industry", invalid.Param)
}

func TestReporter_AllLanesDownReturnsUnavailable(t *testing.T) {
	r := newTestReporter(func(query string, limit int) ([]providers.SearchResult, error) {
		return nil, errors.New("upstream timeout")
	})

	_, err := r.Discover(context.Background(), "outdoor apparel", "", 10)
	var unavailable *contracts.DiscoveryUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "outdoor apparel", unavailable.Query)
	assert.NotEmpty(t, unavailable.Attempts)
	for _, attempt := range unavailable.Attempts {
		assert.Contains(t, attempt.Err, "upstream timeout")
	}
}

func TestReporter_PartialLaneFailureStillReports(t *testing.T) {
	r := newTestReporter(func(query string, limit int) ([]providers.SearchResult, error) {
		if strings.Contains(query, "d2c") {
			return nil, errors.New("rate limited")
		}
		return syntheticResults(query, limit)
	})

	resp, err := r.Discover(context.Background(), "outdoor apparel", "", 20)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Report.CompanyReports)

	failed := 0
	for _, attempt := range resp.ProviderAttempts {
		if attempt.Err != "" {
			failed++
		}
	}
	assert.Equal(t, 1, failed, "only the rate-limited lane should record an error")
}

func TestReporter_DuplicatePagesCollapse(t *testing.T) {
	r := newTestReporter(func(query string, limit int) ([]providers.SearchResult, error) {
		return []providers.SearchResult{
			{
				Title:   "Summit Trail Co posts record growth",
				URL:     "https://news.example.com/summit",
				Snippet: "expansion",
				Source:  "news",
			},
			{
				Title:   "Summit Trail Co posts record growth",
				URL:     "https://news.example.com/summit?utm=1",
				Snippet: "expansion",
				Source:  "news",
			},
		}, nil
	})

	resp, err := r.Discover(context.Background(), "outdoor apparel", "", 10)
	require.NoError(t, err)
	assert.Len(t, resp.Items, 1)
	assert.Len(t, resp.Report.CompanyReports, 1)
}

func TestDeriveCompanyName(t *testing.T) {
	name := DeriveCompanyName("Summit Trail Co - outdoor apparel brand posts record growth", "https://news.example.com/a")
	assert.Equal(t, "Summit Trail Co", name)

	// Generic listicle titles fall back to the domain label unless the host
	// is a known publisher.
	name = DeriveCompanyName("Best outdoor brands list 2026", "https://alpinegoods.com/about")
	assert.Equal(t, "Alpinegoods", name)

	name = DeriveCompanyName("Best outdoor brands list 2026", "https://www.forbes.com/best-brands")
	assert.Equal(t, "Best outdoor brands list 2026", name)
}

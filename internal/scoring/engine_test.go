package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellogreencow/burch/internal/contracts"
	"github.com/hellogreencow/burch/pkg/logger"
)

func testBrand() contracts.Brand {
	return contracts.Brand{
		ID:       "brand-abc123",
		Name:     "Alpine Goods",
		Category: "Outdoor",
		Region:   "US",
	}
}

func hotMetrics() map[string]float64 {
	return map[string]float64{
		MetricInstagramVelocity: 92,
		MetricTikTokVelocity:    95,
		MetricMomentumHits:      4,
		MetricEngagementQuality: 0.93,
		MetricUGCReposts:        88,
		MetricInfluencerOverlap: 80,
		MetricBlogMentions:      40,
		MetricRedditMentions:    60,
		MetricRiskHits:          0,
	}
}

func coldMetrics() map[string]float64 {
	return map[string]float64{
		MetricInstagramVelocity: 4,
		MetricTikTokVelocity:    2,
		MetricMomentumHits:      0,
		MetricEngagementQuality: 0.2,
		MetricUGCReposts:        5,
		MetricInfluencerOverlap: 3,
		MetricBlogMentions:      1,
		MetricRedditMentions:    2,
		MetricRiskHits:          4,
	}
}

func TestEngine_DeeperAnalysisThreshold(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	hot := engine.ComputeScorecard(ScoreInput{Brand: testBrand(), Metrics: hotMetrics()})
	require.GreaterOrEqual(t, hot.HeatScore, contracts.DeeperAnalysisThreshold)
	assert.True(t, hot.DeeperAnalysisRequired, "heat above threshold must flag deeper analysis")

	cold := engine.ComputeScorecard(ScoreInput{Brand: testBrand(), Metrics: coldMetrics()})
	require.Less(t, cold.HeatScore, contracts.DeeperAnalysisThreshold)
	assert.False(t, cold.DeeperAnalysisRequired, "heat below threshold must not flag deeper analysis")
}

func TestEngine_DeeperAnalysisFlagMatchesReportedHeat(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	// Raw heat 74.996 rounds up to the stored 75.00, so the flag must
	// agree with the score the API reports, not the unrounded value.
	card := engine.ComputeScorecard(ScoreInput{
		Brand:   testBrand(),
		Metrics: map[string]float64{MetricEngagementQuality: 3.1123},
	})
	require.Equal(t, contracts.DeeperAnalysisThreshold, card.HeatScore)
	assert.True(t, card.DeeperAnalysisRequired)
}

func TestEngine_Determinism(t *testing.T) {
	engine := NewEngine(logger.NewNop())
	week := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	in := ScoreInput{
		Brand:         testBrand(),
		SnapshotWeek:  week,
		Metrics:       hotMetrics(),
		EvidenceCount: 6,
		UniqueSources: 4,
	}

	assert.Equal(t, engine.ComputeScorecard(in), engine.ComputeScorecard(in))
}

func TestEngine_AsymmetryMonotonicity(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	// Holding heat fixed, asymmetry must weakly decrease as risk rises.
	heat := 70.0
	capital := 50.0
	prev := engine.AsymmetryIndex(heat, 10, capital)
	for risk := 15.0; risk <= 95; risk += 5 {
		cur := engine.AsymmetryIndex(heat, risk, capital)
		assert.LessOrEqual(t, cur, prev, "risk=%v", risk)
		prev = cur
	}

	// And as capital intensity rises.
	risk := 40.0
	prev = engine.AsymmetryIndex(heat, risk, 10)
	for ci := 15.0; ci <= 95; ci += 5 {
		cur := engine.AsymmetryIndex(heat, risk, ci)
		assert.LessOrEqual(t, cur, prev, "capital=%v", ci)
		prev = cur
	}

	// And weakly increase with heat.
	prev = engine.AsymmetryIndex(10, risk, capital)
	for h := 15.0; h <= 99; h += 5 {
		cur := engine.AsymmetryIndex(h, risk, capital)
		assert.GreaterOrEqual(t, cur, prev, "heat=%v", h)
		prev = cur
	}
}

func TestEngine_ScoreBounds(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	for name, metrics := range map[string]map[string]float64{
		"hot":   hotMetrics(),
		"cold":  coldMetrics(),
		"empty": {},
	} {
		card := engine.ComputeScorecard(ScoreInput{Brand: testBrand(), Metrics: metrics})
		assert.GreaterOrEqual(t, card.HeatScore, 5.0, name)
		assert.LessOrEqual(t, card.HeatScore, 99.9, name)
		assert.GreaterOrEqual(t, card.RiskScore, 5.0, name)
		assert.LessOrEqual(t, card.RiskScore, 98.0, name)
		assert.GreaterOrEqual(t, card.AsymmetryIndex, 5.0, name)
		assert.LessOrEqual(t, card.AsymmetryIndex, 98.0, name)
		assert.LessOrEqual(t, card.RevenueP10, card.RevenueP50, name)
		assert.LessOrEqual(t, card.RevenueP50, card.RevenueP90, name)
		assert.GreaterOrEqual(t, card.CapitalRequiredMUSD, 1.0, name)
		assert.LessOrEqual(t, card.CapitalRequiredMUSD, 120.0, name)
	}
}

func TestEngine_ConfidenceBand(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	sparse := engine.ComputeScorecard(ScoreInput{Brand: testBrand(), Metrics: coldMetrics()})
	assert.Equal(t, ConfidenceFloor, sparse.Confidence, "no evidence sits at the floor")

	dense := engine.ComputeScorecard(ScoreInput{
		Brand:           testBrand(),
		Metrics:         hotMetrics(),
		EvidenceCount:   40,
		UniqueSources:   12,
		CatalogObserved: true,
	})
	assert.Greater(t, dense.Confidence, sparse.Confidence)
	assert.LessOrEqual(t, dense.Confidence, ConfidenceCeil)
	assert.Len(t, dense.ConfidenceReasons, 3)
}

func TestEngine_RiskLitigationCapped(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	m := map[string]float64{MetricLitigationFlags: 5}
	capped := engine.RiskScore(m)
	m[MetricLitigationFlags] = 50
	assert.Equal(t, capped, engine.RiskScore(m), "litigation contribution is capped at five flags")
}

func TestDealStructure(t *testing.T) {
	tests := []struct {
		name            string
		heat, risk      float64
		asymmetry       float64
		capitalRequired float64
		want            string
	}{
		{"minority growth", 70, 40, 85, 12, "Minority growth investment"},
		{"debt plus earnout", 70, 60, 85, 45, "Debt plus earnout"},
		{"ip partnership", 90, 55, 70, 12, "IP partnership"},
		{"licensing", 50, 80, 40, 12, "Licensing structure"},
		{"control acquisition", 60, 50, 60, 12, "Control acquisition"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DealStructure(tt.heat, tt.risk, tt.asymmetry, tt.capitalRequired)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, OwnershipTargetForStructure(got))
		})
	}
}

func TestEngine_DeltaHeat(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	in := ScoreInput{Brand: testBrand(), Metrics: hotMetrics()}
	first := engine.ComputeScorecard(in)
	assert.Equal(t, 0.0, first.DeltaHeat, "no delta without history")

	in.PrevHeat = first.HeatScore - 3.5
	in.HasPrevHeat = true
	second := engine.ComputeScorecard(in)
	assert.InDelta(t, 3.5, second.DeltaHeat, 0.01)
}

func TestEngine_RevenueUsesObservedMedianPrice(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	m := hotMetrics()
	baseline := engine.ComputeScorecard(ScoreInput{Brand: testBrand(), Metrics: m})

	m[MetricMedianPriceUSD] = 244 // double the Outdoor baseline
	pricier := engine.ComputeScorecard(ScoreInput{Brand: testBrand(), Metrics: m})
	assert.Greater(t, pricier.RevenueP50, baseline.RevenueP50,
		"observed storefront pricing must flow into the revenue proxy")
}

func TestBuildFinancialInference_ObservedMedianPrice(t *testing.T) {
	card := contracts.Scorecard{
		HeatScore: 60, RiskScore: 40, AsymmetryIndex: 60,
		CapitalIntensity: 50, RevenueP50: 20,
	}

	baseline := BuildFinancialInference(card, "Outdoor", nil)
	assert.Equal(t, AOVByCategory["Outdoor"], baseline.AverageOrderValueUSD)
	assert.Contains(t, baseline.InferenceNotes[0], "average order value baseline")

	obs := []contracts.SignalObservation{{
		Metric:     MetricMedianPriceUSD,
		Value:      58,
		ObservedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}}
	observed := BuildFinancialInference(card, "Outdoor", obs)
	assert.Equal(t, 58.0, observed.AverageOrderValueUSD)
	assert.Contains(t, observed.InferenceNotes[0], "observed storefront median price")
}

package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellogreencow/burch/internal/contracts"
	"github.com/hellogreencow/burch/pkg/logger"
)

func testScorecard() contracts.Scorecard {
	return contracts.Scorecard{
		BrandID:   "brand-test01",
		HeatScore: 72.4,
		RiskScore: 48.0,
	}
}

func TestSimulator_Determinism(t *testing.T) {
	sim := NewSimulator(logger.NewNop())
	req := contracts.SimulateRequest{
		BrandID:    "brand-test01",
		Preset:     "tiktok_ban",
		Seed:       42,
		Iterations: 500,
	}

	first, err := sim.Run(testScorecard(), req)
	require.NoError(t, err)
	second, err := sim.Run(testScorecard(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical arguments must yield identical distributions")
}

func TestSimulator_SeedChangesOutcome(t *testing.T) {
	sim := NewSimulator(logger.NewNop())

	a, err := sim.Run(testScorecard(), contracts.SimulateRequest{BrandID: "brand-test01", Preset: "meta_cpm_spike", Seed: 42})
	require.NoError(t, err)
	b, err := sim.Run(testScorecard(), contracts.SimulateRequest{BrandID: "brand-test01", Preset: "meta_cpm_spike", Seed: 43})
	require.NoError(t, err)

	assert.NotEqual(t, a.RevenueDeltaPct, b.RevenueDeltaPct, "different seeds must diverge")
}

func TestSimulator_BrandOffsetDiverges(t *testing.T) {
	sim := NewSimulator(logger.NewNop())

	cardA := testScorecard()
	cardB := testScorecard()
	cardB.BrandID = "brand-test02"

	a, err := sim.Run(cardA, contracts.SimulateRequest{BrandID: cardA.BrandID, Preset: "tiktok_ban", Seed: 42})
	require.NoError(t, err)
	b, err := sim.Run(cardB, contracts.SimulateRequest{BrandID: cardB.BrandID, Preset: "tiktok_ban", Seed: 42})
	require.NoError(t, err)

	assert.NotEqual(t, a.RevenueDeltaPct, b.RevenueDeltaPct, "same seed on different brands must diverge")
}

func TestSimulator_UnknownPreset(t *testing.T) {
	sim := NewSimulator(logger.NewNop())

	_, err := sim.Run(testScorecard(), contracts.SimulateRequest{BrandID: "brand-test01", Preset: "alien_invasion"})

	var presetErr *contracts.InvalidPresetError
	require.ErrorAs(t, err, &presetErr)
	assert.Equal(t, "alien_invasion", presetErr.Preset)
	assert.Equal(t, PresetNames(), presetErr.Known)
}

func TestSimulator_IterationBounds(t *testing.T) {
	sim := NewSimulator(logger.NewNop())

	tests := []struct {
		name       string
		iterations int
		wantErr    bool
	}{
		{"default", 0, false},
		{"minimum", MinIterations, false},
		{"maximum", MaxIterations, false},
		{"below minimum", 50, true},
		{"above maximum", 100000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(testScorecard(), contracts.SimulateRequest{
				BrandID:    "brand-test01",
				Preset:     "wholesale_contraction",
				Seed:       42,
				Iterations: tt.iterations,
			})
			if tt.wantErr {
				var paramErr *contracts.InvalidParameterError
				require.ErrorAs(t, err, &paramErr)
				assert.Equal(t, "iterations", paramErr.Param)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSimulator_DefaultsApplied(t *testing.T) {
	sim := NewSimulator(logger.NewNop())

	result, err := sim.Run(testScorecard(), contracts.SimulateRequest{BrandID: "brand-test01", Preset: "tiktok_ban"})
	require.NoError(t, err)

	assert.Equal(t, int64(DefaultSeed), result.Seed)
	assert.Equal(t, DefaultIterations, result.Iterations)
}

func TestSimulator_BandsOrderedAndClipped(t *testing.T) {
	sim := NewSimulator(logger.NewNop())

	for _, preset := range PresetNames() {
		result, err := sim.Run(testScorecard(), contracts.SimulateRequest{
			BrandID:    "brand-test01",
			Preset:     preset,
			Seed:       42,
			Iterations: 5000,
		})
		require.NoError(t, err)

		assert.LessOrEqual(t, result.RevenueDeltaPct.P10, result.RevenueDeltaPct.P50, preset)
		assert.LessOrEqual(t, result.RevenueDeltaPct.P50, result.RevenueDeltaPct.P90, preset)
		assert.GreaterOrEqual(t, result.RevenueDeltaPct.P10, -50.0, preset)
		assert.LessOrEqual(t, result.RevenueDeltaPct.P90, 30.0, preset)
		assert.GreaterOrEqual(t, result.MarginDeltaPct.P10, -35.0, preset)
		assert.LessOrEqual(t, result.MarginDeltaPct.P90, 20.0, preset)
	}
}

func TestSimulator_StressedRiskCapped(t *testing.T) {
	sim := NewSimulator(logger.NewNop())

	card := testScorecard()
	card.RiskScore = 95.0

	result, err := sim.Run(card, contracts.SimulateRequest{BrandID: card.BrandID, Preset: "tiktok_ban", Seed: 42})
	require.NoError(t, err)

	assert.Equal(t, 98.0, result.StressedRisk)
}

func TestPresetNames(t *testing.T) {
	assert.Equal(t, []string{"meta_cpm_spike", "tiktok_ban", "wholesale_contraction"}, PresetNames())
}

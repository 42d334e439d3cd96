package scenario

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/hellogreencow/burch/internal/contracts"
	"github.com/hellogreencow/burch/pkg/logger"
)

// Preset holds the shock distribution for one named stress scenario.
// Revenue and margin deltas are drawn from independent normals; risk shift
// is a fixed additive bump to the stressed risk score.
type Preset struct {
	RevMu       float64
	RevSigma    float64
	MarginMu    float64
	MarginSigma float64
	RiskShift   float64
}

var presets = map[string]Preset{
	"meta_cpm_spike":        {RevMu: -0.08, RevSigma: 0.06, MarginMu: -0.05, MarginSigma: 0.03, RiskShift: 7.5},
	"tiktok_ban":            {RevMu: -0.14, RevSigma: 0.08, MarginMu: -0.06, MarginSigma: 0.04, RiskShift: 12.0},
	"wholesale_contraction": {RevMu: -0.11, RevSigma: 0.07, MarginMu: -0.03, MarginSigma: 0.03, RiskShift: 9.0},
}

// Outlier clipping bounds for the drawn deltas.
const (
	revDeltaMin    = -0.5
	revDeltaMax    = 0.3
	marginDeltaMin = -0.35
	marginDeltaMax = 0.2
)

const (
	DefaultSeed       = 42
	DefaultIterations = 1000
	MinIterations     = 100
	MaxIterations     = 50000
)

// PresetNames returns the known preset keys sorted for stable error text.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Simulator runs seeded stress projections against a brand's scorecard.
type Simulator struct {
	log *logger.Logger
}

func NewSimulator(log *logger.Logger) *Simulator {
	return &Simulator{log: log}
}

// brandSeedOffset derives a stable per-brand offset so two brands under
// the same caller seed still diverge.
func brandSeedOffset(brandID string) int64 {
	var sum int64
	for _, ch := range brandID {
		sum += int64(ch)
	}
	return sum % 10000
}

func clampDelta(v, low, high float64) float64 {
	return math.Max(low, math.Min(high, v))
}

func band(values []float64) (contracts.PercentileBand, error) {
	p10, err := stats.Percentile(values, 10)
	if err != nil {
		return contracts.PercentileBand{}, err
	}
	p50, err := stats.Percentile(values, 50)
	if err != nil {
		return contracts.PercentileBand{}, err
	}
	p90, err := stats.Percentile(values, 90)
	if err != nil {
		return contracts.PercentileBand{}, err
	}
	return contracts.PercentileBand{P10: round3(p10), P50: round3(p50), P90: round3(p90)}, nil
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

// Run executes one seeded projection. The generator is created fresh per
// call from the caller seed plus the brand offset, so identical arguments
// always yield identical bands.
func (s *Simulator) Run(card contracts.Scorecard, req contracts.SimulateRequest) (contracts.ScenarioResult, error) {
	preset, ok := presets[req.Preset]
	if !ok {
		return contracts.ScenarioResult{}, &contracts.InvalidPresetError{Preset: req.Preset, Known: PresetNames()}
	}
	seed := req.Seed
	if seed == 0 {
		seed = DefaultSeed
	}
	iterations := req.Iterations
	if iterations == 0 {
		iterations = DefaultIterations
	}
	if iterations < MinIterations || iterations > MaxIterations {
		return contracts.ScenarioResult{}, &contracts.InvalidParameterError{
			Param:  "iterations",
			Reason: "must be between 100 and 50000",
		}
	}

	started := time.Now()
	rng := rand.New(rand.NewSource(seed + brandSeedOffset(req.BrandID)))

	revDeltas := make([]float64, iterations)
	marginDeltas := make([]float64, iterations)
	for i := 0; i < iterations; i++ {
		revDeltas[i] = clampDelta(rng.NormFloat64()*preset.RevSigma+preset.RevMu, revDeltaMin, revDeltaMax) * 100
		marginDeltas[i] = clampDelta(rng.NormFloat64()*preset.MarginSigma+preset.MarginMu, marginDeltaMin, marginDeltaMax) * 100
	}

	revBand, err := band(revDeltas)
	if err != nil {
		return contracts.ScenarioResult{}, err
	}
	marginBand, err := band(marginDeltas)
	if err != nil {
		return contracts.ScenarioResult{}, err
	}

	stressedRisk := math.Min(98, card.RiskScore+preset.RiskShift)

	if s.log != nil {
		s.log.WithFields(map[string]interface{}{
			"brand_id":   req.BrandID,
			"preset":     req.Preset,
			"iterations": iterations,
			"elapsed_ms": time.Since(started).Milliseconds(),
		}).Debug("scenario run complete")
	}

	return contracts.ScenarioResult{
		BrandID:         req.BrandID,
		Preset:          req.Preset,
		Seed:            seed,
		Iterations:      iterations,
		RevenueDeltaPct: revBand,
		MarginDeltaPct:  marginBand,
		RiskShift:       round3(preset.RiskShift),
		StressedRisk:    round3(stressedRisk),
	}, nil
}

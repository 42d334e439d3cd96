package contracts

// PercentileBand holds the p10/p50/p90 cut of a simulated outcome
// distribution.
type PercentileBand struct {
	P10 float64 `json:"p10"`
	P50 float64 `json:"p50"`
	P90 float64 `json:"p90"`
}

// SimulateRequest is the input to a scenario run. Seed defaults to 42 and
// iterations to 1000 when omitted.
type SimulateRequest struct {
	BrandID    string `json:"brand_id"`
	Preset     string `json:"preset"`
	Seed       int64  `json:"seed"`
	Iterations int    `json:"iterations"`
}

// ScenarioResult is the outcome of a seeded stress projection. Identical
// brand, preset, seed and iterations always produce identical results.
type ScenarioResult struct {
	BrandID         string         `json:"brand_id"`
	Preset          string         `json:"preset"`
	Seed            int64          `json:"seed"`
	Iterations      int            `json:"iterations"`
	RevenueDeltaPct PercentileBand `json:"revenue_delta_pct"`
	MarginDeltaPct  PercentileBand `json:"margin_delta_pct"`
	RiskShift       float64        `json:"risk_shift"`
	StressedRisk    float64        `json:"stressed_risk_score"`
}

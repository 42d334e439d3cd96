package contracts

import "time"

// DeeperAnalysisThreshold is the heat score at and above which a brand is
// flagged for the extended diligence workflow.
const DeeperAnalysisThreshold = 75.0

// Scorecard is a per-brand weekly snapshot of composite scores.
// Exactly one scorecard per brand is current at any time; older snapshots
// are retained for delta computation and charting.
//
// Score bounds: heat, risk, asymmetry and capital intensity are 0-100,
// confidence is 0-1, revenue bands and capital required are $M.
type Scorecard struct {
	BrandID      string    `json:"brand_id"`
	SnapshotWeek time.Time `json:"snapshot_week"`

	HeatScore        float64 `json:"heat_score"`
	RiskScore        float64 `json:"risk_score"`
	AsymmetryIndex   float64 `json:"asymmetry_index"`
	CapitalIntensity float64 `json:"capital_intensity"`

	RevenueP10 float64 `json:"revenue_p10"`
	RevenueP50 float64 `json:"revenue_p50"`
	RevenueP90 float64 `json:"revenue_p90"`

	DeltaHeat         float64  `json:"delta_heat"`
	Confidence        float64  `json:"confidence"`
	ConfidenceReasons []string `json:"confidence_reasons,omitempty"`

	CapitalRequiredMUSD    float64 `json:"capital_required_musd"`
	SuggestedDealStructure string  `json:"suggested_deal_structure"`
	DeeperAnalysisRequired bool    `json:"deeper_analysis_required"`
}

// ConfidenceEnvelope carries the overall confidence plus its reasons
type ConfidenceEnvelope struct {
	Overall float64  `json:"overall"`
	Reasons []string `json:"reasons"`
}

package contracts

import (
	"fmt"
	"time"
)

// SortKey selects the feed ranking dimension. All keys rank descending:
// rank 1 is the highest value under the selected key.
type SortKey string

const (
	SortHeat            SortKey = "heat"
	SortAsymmetry       SortKey = "asymmetry"
	SortRisk            SortKey = "risk"
	SortRevenue         SortKey = "revenue"
	SortCapitalRequired SortKey = "capital_required"
)

// ParseSortKey validates a raw sort parameter. Empty input defaults to heat.
func ParseSortKey(raw string) (SortKey, error) {
	if raw == "" {
		return SortHeat, nil
	}
	switch SortKey(raw) {
	case SortHeat, SortAsymmetry, SortRisk, SortRevenue, SortCapitalRequired:
		return SortKey(raw), nil
	}
	return "", &InvalidParameterError{Param: "sort", Reason: fmt.Sprintf("unknown sort key %q", raw)}
}

// RankedFeedItem is a projection of a brand and its current scorecard with
// an assigned rank. Ranks form a contiguous 1..N sequence over the result
// set of each feed query.
type RankedFeedItem struct {
	Rank                   int     `json:"rank"`
	BrandID                string  `json:"brand_id"`
	Name                   string  `json:"name"`
	Category               string  `json:"category"`
	Region                 string  `json:"region"`
	HeatScore              float64 `json:"heat_score"`
	RiskScore              float64 `json:"risk_score"`
	AsymmetryIndex         float64 `json:"asymmetry_index"`
	CapitalIntensity       float64 `json:"capital_intensity"`
	RevenueP50             float64 `json:"revenue_p50"`
	CapitalRequiredMUSD    float64 `json:"capital_required_musd"`
	DeltaHeat              float64 `json:"delta_heat"`
	Confidence             float64 `json:"confidence"`
	DeeperAnalysisRequired bool    `json:"deeper_analysis_required"`
}

// FeedResponse is the wire shape of the ranked feed
type FeedResponse struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Sort        SortKey          `json:"sort"`
	Items       []RankedFeedItem `json:"items"`
}

// SeedResult summarizes a reseed or refresh batch
type SeedResult struct {
	Brands    int `json:"brands"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Snapshots int `json:"snapshots"`
	Failed    int `json:"failed"`
}

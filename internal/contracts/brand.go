package contracts

import "time"

// Brand is a tracked consumer brand identity. Brands are owned by the
// universe manager: created on seed/reseed, never deleted individually.
type Brand struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	EntityKey   string `json:"-"` // normalized key used for dedupe, not for display
	Category    string `json:"category"`
	Region      string `json:"region"`
	Website     string `json:"website"`
	Description string `json:"description"`
}

// SignalObservation is a single observed metric value for a brand.
// Observations are append-only; multiple observations of the same metric
// form a time series.
type SignalObservation struct {
	BrandID    string    `json:"brand_id"`
	Metric     string    `json:"metric"`
	ObservedAt time.Time `json:"observed_at"`
	Value      float64   `json:"value"`
	Source     string    `json:"source"`
}

// EvidenceCitation links a brand to a supporting external document
type EvidenceCitation struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Source      string  `json:"source"`
	Snippet     string  `json:"snippet,omitempty"`
	Reliability float64 `json:"reliability,omitempty"`
}

// TimeSeriesResponse is the wire shape of a brand's observation history
type TimeSeriesResponse struct {
	BrandID string              `json:"brand_id"`
	Points  []SignalObservation `json:"points"`
}

package providers

import "context"

// SearchResult is one normalized external search hit.
type SearchResult struct {
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Snippet       string   `json:"snippet"`
	Source        string   `json:"source"`
	PublishedDate string   `json:"published_date,omitempty"`
	Engines       []string `json:"engines,omitempty"`
	Score         float64  `json:"score,omitempty"`
	Category      string   `json:"category,omitempty"`
}

// SearchProvider is one capability-equivalent external search backend.
// Providers self-report cost and quality so the router can rank them.
type SearchProvider interface {
	Name() string
	CostPerQuery() float64
	Reliability() float64
	Freshness() float64
	Enabled() bool
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

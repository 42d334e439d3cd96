package providers

import "context"

// PaidProvider is a placeholder adapter for a keyed commercial search API.
// It participates in routing (cost/quality ranking, budget accounting) but
// returns no results until a concrete integration lands.
// TODO: wire the Brave Search API adapter first; it is the cheapest keyed tier.
type PaidProvider struct {
	name         string
	apiKey       string
	costPerQuery float64
	reliability  float64
	freshness    float64
}

func NewPaidProvider(name, apiKey string, costPerQuery, reliability, freshness float64) *PaidProvider {
	return &PaidProvider{
		name:         name,
		apiKey:       apiKey,
		costPerQuery: costPerQuery,
		reliability:  reliability,
		freshness:    freshness,
	}
}

func (p *PaidProvider) Name() string          { return p.name }
func (p *PaidProvider) CostPerQuery() float64 { return p.costPerQuery }
func (p *PaidProvider) Reliability() float64  { return p.reliability }
func (p *PaidProvider) Freshness() float64    { return p.freshness }
func (p *PaidProvider) Enabled() bool         { return p.apiKey != "" }

func (p *PaidProvider) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	_ = ctx
	_ = query
	_ = limit
	return nil, nil
}

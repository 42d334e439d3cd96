package universe

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/hellogreencow/burch/internal/contracts"
	"github.com/hellogreencow/burch/internal/scoring"
)

var categories = []string{
	"Beauty", "Personal Care", "Food & Beverage", "Apparel", "Home Goods",
	"Consumer Tech", "Pet", "Outdoor", "Childcare", "Wellness",
}

var regions = []string{
	"North America", "Europe", "UK", "Australia", "Global",
}

const signalWeeks = 12

// archetype biases a brand's synthetic signal window so the universe has
// plausible spread: breakouts run hot, steady brands stay mid-band,
// strugglers carry elevated risk.
type archetype struct {
	label        string
	socialBase   float64
	socialTrend  float64
	momentumBase float64
	riskBase     float64
}

var archetypes = []archetype{
	{label: "breakout", socialBase: 52, socialTrend: 3.2, momentumBase: 4, riskBase: 24},
	{label: "steady", socialBase: 38, socialTrend: 1.1, momentumBase: 2, riskBase: 34},
	{label: "plateau", socialBase: 30, socialTrend: 0.2, momentumBase: 1, riskBase: 42},
	{label: "struggling", socialBase: 22, socialTrend: -0.9, momentumBase: 0, riskBase: 58},
}

func clampf(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

// synthBrandAttrs fills in the descriptive fields for a generated brand.
func synthBrandAttrs(rng *rand.Rand, name string) (category, region, website, description string) {
	category = categories[rng.Intn(len(categories))]
	region = regions[rng.Intn(len(regions))]
	slug := strings.ReplaceAll(strings.ToLower(EntityKeyFromName(name)), " ", "")
	website = fmt.Sprintf("https://%s.com/", slug)
	description = fmt.Sprintf("%s is a %s consumer brand with a direct-to-consumer core and growing retail presence.",
		name, strings.ToLower(category))
	return category, region, website, description
}

// synthObservations generates the trailing weekly signal window for one
// brand. The window covers every metric the scoring engine reads so
// scorecards are fully determined by stored state.
func synthObservations(rng *rand.Rand, brandID string, now time.Time) []contracts.SignalObservation {
	arch := archetypes[rng.Intn(len(archetypes))]

	quality := clampf(0.45+rng.Float64()*0.45-arch.riskBase/400, 0.2, 0.98)
	momentum := arch.momentumBase + float64(rng.Intn(3))
	riskHits := clampf(arch.riskBase/30+float64(rng.Intn(2)), 0, 6)
	traffic := clampf(arch.socialBase*2.4+rng.Float64()*60, 5, 450)
	sku := clampf(12+rng.Float64()*180, 1, 600)

	platform := clampf(arch.riskBase+rng.Float64()*30, 5, 95)
	supplier := clampf(arch.riskBase*0.8+rng.Float64()*35, 5, 95)
	founder := clampf(30+rng.Float64()*50, 5, 95)
	litigation := float64(0)
	if arch.label == "struggling" && rng.Float64() < 0.4 {
		litigation = float64(1 + rng.Intn(2))
	}

	weekly := func(metric, source string, base, trend, jitter float64, low, high float64) []contracts.SignalObservation {
		out := make([]contracts.SignalObservation, 0, signalWeeks)
		for w := 0; w < signalWeeks; w++ {
			value := clampf(base+trend*float64(w)+rng.NormFloat64()*jitter, low, high)
			out = append(out, contracts.SignalObservation{
				BrandID:    brandID,
				Metric:     metric,
				ObservedAt: now.AddDate(0, 0, -7*(signalWeeks-1-w)),
				Value:      value,
				Source:     source,
			})
		}
		return out
	}

	var obs []contracts.SignalObservation
	obs = append(obs, weekly(scoring.MetricInstagramVelocity, "social_proxy", arch.socialBase, arch.socialTrend, 4, 0, 100)...)
	obs = append(obs, weekly(scoring.MetricTikTokVelocity, "social_proxy", arch.socialBase*0.9, arch.socialTrend*1.2, 5, 0, 100)...)
	obs = append(obs, weekly(scoring.MetricEngagementRate, "engagement_proxy", 1.2+quality*6, 0.05, 0.4, 0.5, 18)...)
	obs = append(obs, weekly(scoring.MetricCommentsToLikes, "engagement_proxy", 0.04+quality*0.11, 0.001, 0.01, 0.02, 0.32)...)
	obs = append(obs, weekly(scoring.MetricRepeatCommenter, "engagement_proxy", 0.12+quality*0.55, 0.002, 0.03, 0.08, 0.95)...)
	obs = append(obs, weekly(scoring.MetricInfluencerOverlap, "network_proxy", 22+arch.socialBase*0.7, arch.socialTrend*0.5, 3, 5, 99)...)
	obs = append(obs, weekly(scoring.MetricUGCReposts, "ugc_proxy", 6+arch.socialBase*0.8, arch.socialTrend*0.6, 3, 1, 95)...)
	obs = append(obs, weekly(scoring.MetricEngagementQuality, "engagement_proxy", quality, 0, 0.02, 0.2, 0.98)...)
	obs = append(obs, weekly(scoring.MetricWebsiteTraffic, "commerce_proxy", traffic, arch.socialTrend*1.5, 8, 5, 450)...)
	obs = append(obs, weekly(scoring.MetricSKUCount, "commerce_proxy", sku, 0.5, 2, 1, 600)...)
	obs = append(obs, weekly(scoring.MetricSelloutVelocity, "commerce_proxy", 35+momentum*4, arch.socialTrend*0.4, 4, 5, 99)...)
	obs = append(obs, weekly(scoring.MetricMetaAdActivity, "ad_proxy", 10+momentum*6, 0.5, 4, 0, 99)...)
	obs = append(obs, weekly(scoring.MetricHiringVelocity, "hiring_proxy", momentum*5, 0.3, 2, 0, 55)...)
	obs = append(obs, weekly(scoring.MetricStockistExpansion, "retail_proxy", momentum*4, 0.2, 2, 0, 45)...)
	obs = append(obs, weekly(scoring.MetricGoogleTrends, "search_proxy", 18+arch.socialBase*0.8, arch.socialTrend, 4, 2, 100)...)
	obs = append(obs, weekly(scoring.MetricRedditMentions, "reddit", momentum*8, 0.4, 4, 0, 120)...)
	obs = append(obs, weekly(scoring.MetricPinterestSaves, "search_proxy", momentum*6, 0.3, 3, 0, 100)...)
	obs = append(obs, weekly(scoring.MetricBlogMentions, "news", momentum*3, 0.2, 2, 0, 40)...)
	obs = append(obs, weekly(scoring.MetricResaleActivity, "market_proxy", momentum*4, 0.2, 3, 0, 100)...)

	// Risk factors move slowly; a single weekly series still lets deltas
	// show up in the data-collection snapshot.
	obs = append(obs, weekly(scoring.MetricPlatformDependency, "risk_proxy", platform, 0, 2, 5, 95)...)
	obs = append(obs, weekly(scoring.MetricSupplierConc, "risk_proxy", supplier, 0, 2, 5, 95)...)
	obs = append(obs, weekly(scoring.MetricFounderDependency, "risk_proxy", founder, 0, 1.5, 5, 95)...)

	obs = append(obs, contracts.SignalObservation{
		BrandID: brandID, Metric: scoring.MetricLitigationFlags, ObservedAt: now, Value: litigation, Source: "legal_proxy",
	})
	obs = append(obs, contracts.SignalObservation{
		BrandID: brandID, Metric: scoring.MetricMomentumHits, ObservedAt: now, Value: momentum, Source: "search_proxy",
	})
	obs = append(obs, contracts.SignalObservation{
		BrandID: brandID, Metric: scoring.MetricRiskHits, ObservedAt: now, Value: riskHits, Source: "search_proxy",
	})

	return obs
}

// synthEvidence builds baseline citations for a generated brand. Sources
// mirror the reliability tiers the discovery pipeline knows about.
func synthEvidence(rng *rand.Rand, brand contracts.Brand, deep bool) []contracts.EvidenceCitation {
	slug := strings.ReplaceAll(EntityKeyFromName(brand.Name), " ", "-")
	citations := []contracts.EvidenceCitation{
		{
			Title:       brand.Name + " | Official Site",
			URL:         brand.Website,
			Source:      "brand_site",
			Snippet:     brand.Description,
			Reliability: 0.7,
		},
		{
			Title:       fmt.Sprintf("%s mentioned in %s roundup", brand.Name, strings.ToLower(brand.Category)),
			URL:         fmt.Sprintf("https://news.example.org/%s-roundup", slug),
			Source:      "news",
			Snippet:     fmt.Sprintf("%s keeps showing up in %s conversations this quarter.", brand.Name, strings.ToLower(brand.Category)),
			Reliability: 0.78,
		},
	}
	if deep {
		citations = append(citations,
			contracts.EvidenceCitation{
				Title:       fmt.Sprintf("r/%s thread on %s", strings.ReplaceAll(strings.ToLower(brand.Category), " ", ""), brand.Name),
				URL:         fmt.Sprintf("https://reddit.com/r/brands/%s", slug),
				Source:      "reddit",
				Snippet:     fmt.Sprintf("Community discussion of %s product quality and restock cadence.", brand.Name),
				Reliability: 0.72,
			},
			contracts.EvidenceCitation{
				Title:       brand.Name + " registry record",
				URL:         fmt.Sprintf("https://registry.example.gov/%s", slug),
				Source:      "public_registry",
				Snippet:     "Active corporate registration in good standing.",
				Reliability: 0.84,
			},
		)
		if rng.Float64() < 0.5 {
			citations = append(citations, contracts.EvidenceCitation{
				Title:       fmt.Sprintf("%s supplier and sourcing notes", brand.Name),
				URL:         fmt.Sprintf("https://trade.example.org/%s-sourcing", slug),
				Source:      "news",
				Snippet:     "Production notes on co-manufacturing partners and fulfillment footprint.",
				Reliability: 0.76,
			})
		}
	}
	return citations
}

// synthRefreshObservations drifts the latest stored values forward one
// week so refresh adds history without discarding it.
func synthRefreshObservations(rng *rand.Rand, brandID string, latest map[string]contracts.SignalObservation, now time.Time) []contracts.SignalObservation {
	bounds := map[string][2]float64{
		scoring.MetricInstagramVelocity:  {0, 100},
		scoring.MetricTikTokVelocity:     {0, 100},
		scoring.MetricEngagementRate:     {0.5, 18},
		scoring.MetricCommentsToLikes:    {0.02, 0.32},
		scoring.MetricRepeatCommenter:    {0.08, 0.95},
		scoring.MetricInfluencerOverlap:  {5, 99},
		scoring.MetricUGCReposts:         {1, 95},
		scoring.MetricEngagementQuality:  {0.2, 0.98},
		scoring.MetricWebsiteTraffic:     {5, 450},
		scoring.MetricSKUCount:           {1, 600},
		scoring.MetricSelloutVelocity:    {5, 99},
		scoring.MetricMetaAdActivity:     {0, 99},
		scoring.MetricHiringVelocity:     {0, 55},
		scoring.MetricStockistExpansion:  {0, 45},
		scoring.MetricGoogleTrends:       {2, 100},
		scoring.MetricRedditMentions:     {0, 120},
		scoring.MetricPinterestSaves:     {0, 100},
		scoring.MetricBlogMentions:       {0, 40},
		scoring.MetricResaleActivity:     {0, 100},
		scoring.MetricPlatformDependency: {5, 95},
		scoring.MetricSupplierConc:       {5, 95},
		scoring.MetricFounderDependency:  {5, 95},
		scoring.MetricLitigationFlags:    {0, 6},
		scoring.MetricMomentumHits:       {0, 8},
		scoring.MetricRiskHits:           {0, 6},
	}

	out := make([]contracts.SignalObservation, 0, len(latest))
	for metric, prev := range latest {
		b, ok := bounds[metric]
		if !ok {
			continue
		}
		scale := (b[1] - b[0]) * 0.04
		value := clampf(prev.Value+rng.NormFloat64()*scale, b[0], b[1])
		if metric == scoring.MetricLitigationFlags || metric == scoring.MetricMomentumHits || metric == scoring.MetricRiskHits {
			// Count metrics step by whole units, mostly staying put.
			value = prev.Value
			switch r := rng.Float64(); {
			case r < 0.1 && prev.Value > b[0]:
				value = prev.Value - 1
			case r > 0.9 && prev.Value < b[1]:
				value = prev.Value + 1
			}
		}
		out = append(out, contracts.SignalObservation{
			BrandID:    brandID,
			Metric:     metric,
			ObservedAt: now,
			Value:      value,
			Source:     prev.Source,
		})
	}
	return out
}

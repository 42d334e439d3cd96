package scoring

import (
	"time"

	"github.com/hellogreencow/burch/internal/contracts"
	"github.com/hellogreencow/burch/pkg/logger"
)

// Metric names stored in the signal log. The engine reads the latest value
// per metric; everything below is a 0-100 proxy unless noted.
const (
	MetricInstagramVelocity  = "instagram_follower_velocity"
	MetricTikTokVelocity     = "tiktok_follower_velocity"
	MetricEngagementRate     = "engagement_rate" // percent
	MetricCommentsToLikes    = "comments_to_likes_ratio"
	MetricRepeatCommenter    = "repeat_commenter_density"
	MetricInfluencerOverlap  = "influencer_tag_overlap"
	MetricUGCReposts         = "ugc_repost_frequency"
	MetricEngagementQuality  = "engagement_quality" // 0-1
	MetricWebsiteTraffic     = "website_traffic_k"  // thousands of visits/mo
	MetricSKUCount           = "sku_count"
	MetricMedianPriceUSD     = "median_price_usd" // observed storefront median price
	MetricSelloutVelocity    = "sellout_velocity"
	MetricMetaAdActivity     = "meta_ad_activity"
	MetricHiringVelocity     = "hiring_velocity"
	MetricStockistExpansion  = "stockist_expansion"
	MetricGoogleTrends       = "google_trends_velocity"
	MetricRedditMentions     = "reddit_mentions"
	MetricPinterestSaves     = "pinterest_saves_velocity"
	MetricBlogMentions       = "blog_mentions"
	MetricResaleActivity     = "resale_activity"
	MetricMomentumHits       = "momentum_hits"
	MetricRiskHits           = "risk_hits"
	MetricPlatformDependency = "platform_dependency"
	MetricSupplierConc       = "supplier_concentration"
	MetricFounderDependency  = "founder_dependency"
	MetricLitigationFlags    = "litigation_flags" // count
	MetricHeat               = "heat"
)

// Heat is a weighted blend of velocity and engagement proxies. Weights sum
// to 1 over 0-100 component scores.
const (
	heatWeightGrowth     = 0.30
	heatWeightEngagement = 0.20
	heatWeightUGC        = 0.15
	heatWeightSentiment  = 0.15
	heatWeightInfluencer = 0.10
	heatWeightGeo        = 0.10
)

// Risk blends the concentration and dependency factors, each a bounded
// 0-100 proxy, plus a fixed contribution per litigation flag (capped).
const (
	riskBase             = 12.0
	riskWeightPlatform   = 0.32
	riskWeightSupplier   = 0.26
	riskWeightFounder    = 0.22
	riskPerLitigation    = 6.0
	riskLitigationMaxCnt = 5.0
)

// Asymmetry rises with heat and falls with risk and capital intensity.
const (
	asymWeightHeat    = 0.72
	asymWeightSafety  = 0.28
	asymWeightCapital = 0.10
	asymOffset        = 8.0
)

// Confidence for first-party scorecards sits in [0.60, 0.95]. Discovery
// briefs are capped below this floor so the two populations never overlap.
const (
	ConfidenceFloor = 0.60
	ConfidenceCeil  = 0.95
)

// AOVByCategory is the average-order-value baseline in USD used by the
// revenue proxy when no observed pricing exists.
var AOVByCategory = map[string]float64{
	"Beauty":          52.0,
	"Personal Care":   38.0,
	"Food & Beverage": 27.0,
	"Apparel":         84.0,
	"Home Goods":      96.0,
	"Consumer Tech":   168.0,
	"Pet":             44.0,
	"Outdoor":         122.0,
	"Childcare":       64.0,
	"Wellness":        58.0,
}

const defaultAOV = 60.0

// baseCapitalByCategory is the capital-intensity prior per category.
var baseCapitalByCategory = map[string]float64{
	"Food & Beverage": 70.0,
	"Home Goods":      65.0,
	"Outdoor":         60.0,
	"Apparel":         60.0,
	"Pet":             60.0,
	"Beauty":          55.0,
	"Personal Care":   55.0,
	"Childcare":       55.0,
	"Wellness":        50.0,
	"Consumer Tech":   45.0,
}

const defaultBaseCapital = 55.0

// ScoreInput is the signal window the engine reduces to a scorecard.
// Identical inputs always produce an identical scorecard.
type ScoreInput struct {
	Brand        contracts.Brand
	SnapshotWeek time.Time
	Metrics      map[string]float64 // latest value per metric
	PrevHeat     float64
	HasPrevHeat  bool

	EvidenceCount   int
	UniqueSources   int
	CatalogObserved bool
}

// Engine derives composite scores from stored signals.
type Engine struct {
	log *logger.Logger
}

func NewEngine(log *logger.Logger) *Engine {
	return &Engine{log: log}
}

func clamp(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

func metric(m map[string]float64, name string, def float64) float64 {
	if v, ok := m[name]; ok {
		return v
	}
	return def
}

// growthVelocity combines the social follower velocities with momentum
// keyword hits into one 0-100 acceleration proxy.
func growthVelocity(m map[string]float64) float64 {
	ig := metric(m, MetricInstagramVelocity, 0)
	tt := metric(m, MetricTikTokVelocity, 0)
	momentum := metric(m, MetricMomentumHits, 0)
	return clamp(0.5*(ig+tt)+momentum*3, 0, 100)
}

func sentimentScore(m map[string]float64) float64 {
	momentum := metric(m, MetricMomentumHits, 0)
	riskHits := metric(m, MetricRiskHits, 0)
	return clamp(55+momentum*5-riskHits*8, 0, 100)
}

func geographicSpread(m map[string]float64) float64 {
	blogs := metric(m, MetricBlogMentions, 0)
	reddit := metric(m, MetricRedditMentions, 0)
	return clamp(45+blogs*0.75+reddit*0.33, 0, 100)
}

// HeatScore computes the 0-100 demand-heat composite.
func (e *Engine) HeatScore(m map[string]float64) float64 {
	heat := heatWeightGrowth*growthVelocity(m) +
		heatWeightEngagement*(metric(m, MetricEngagementQuality, 0.5)*100) +
		heatWeightUGC*metric(m, MetricUGCReposts, 0) +
		heatWeightSentiment*sentimentScore(m) +
		heatWeightInfluencer*metric(m, MetricInfluencerOverlap, 0) +
		heatWeightGeo*geographicSpread(m)
	return clamp(heat, 5, 99.9)
}

// RiskScore computes the 0-100 downside composite from the dependency and
// concentration proxies.
func (e *Engine) RiskScore(m map[string]float64) float64 {
	litigation := metric(m, MetricLitigationFlags, 0)
	if litigation > riskLitigationMaxCnt {
		litigation = riskLitigationMaxCnt
	}
	risk := riskBase +
		riskWeightPlatform*metric(m, MetricPlatformDependency, 40) +
		riskWeightSupplier*metric(m, MetricSupplierConc, 40) +
		riskWeightFounder*metric(m, MetricFounderDependency, 40) +
		riskPerLitigation*litigation
	return clamp(risk, 5, 98)
}

// AsymmetryIndex captures return per unit of risk and capital. It is
// monotone increasing in heat and decreasing in risk and capital intensity.
func (e *Engine) AsymmetryIndex(heat, risk, capitalIntensity float64) float64 {
	return clamp(asymWeightHeat*heat+asymWeightSafety*(100-risk)-asymWeightCapital*capitalIntensity+asymOffset, 5, 98)
}

// CapitalIntensity applies the category prior adjusted for SKU complexity
// and engagement efficiency.
func (e *Engine) CapitalIntensity(category string, m map[string]float64) float64 {
	base, ok := baseCapitalByCategory[category]
	if !ok {
		base = defaultBaseCapital
	}
	sku := metric(m, MetricSKUCount, 40)
	quality := metric(m, MetricEngagementQuality, 0.5)
	return clamp(base+(sku/120)*6-quality*8, 10, 95)
}

// aovFor returns the observed storefront median price when the catalog has
// been read, otherwise the category baseline.
func aovFor(category string, m map[string]float64) float64 {
	if observed := metric(m, MetricMedianPriceUSD, 0); observed > 0 {
		return observed
	}
	aov, ok := AOVByCategory[category]
	if !ok {
		aov = defaultAOV
	}
	return aov
}

// revenueBands estimates annual revenue ($M) from traffic, conversion and
// AOV, then spreads a p10/p90 envelope around the midpoint.
func (e *Engine) revenueBands(category string, m map[string]float64) (p10, p50, p90 float64) {
	aov := aovFor(category, m)
	quality := metric(m, MetricEngagementQuality, 0.5)
	riskHits := metric(m, MetricRiskHits, 0)
	traffic := metric(m, MetricWebsiteTraffic, 20)

	conversionPct := clamp(0.9+quality*0.9+growthVelocity(m)/100-riskHits/22, 0.7, 5.5)
	monthly := traffic * 1000 * (conversionPct / 100) * aov
	p50 = clamp(monthly*12/1_000_000, 0.4, 350)
	p10 = clamp(p50*0.72, 0.2, 350)
	p90 = clamp(p50*1.32, 0.3, 600)
	return p10, p50, p90
}

// capitalRequired estimates the growth capital ($M) a deal would need.
func (e *Engine) capitalRequired(revenueP50, capitalIntensity float64) float64 {
	return clamp(2.0+revenueP50*(0.06+capitalIntensity/800), 1.0, 120.0)
}

// confidence maps evidence density into the first-party band.
func (e *Engine) confidence(in ScoreInput) (float64, []string) {
	c := ConfidenceFloor +
		min(0.22, float64(in.EvidenceCount)/40) +
		min(0.10, float64(in.UniqueSources)/30)
	if in.CatalogObserved {
		c += 0.03
	}
	c = clamp(c, ConfidenceFloor, ConfidenceCeil)

	reasons := make([]string, 0, 3)
	if in.UniqueSources >= 6 {
		reasons = append(reasons, "cross-source corroboration")
	} else {
		reasons = append(reasons, "limited cross-source corroboration")
	}
	if in.CatalogObserved {
		reasons = append(reasons, "commerce observability via product catalog")
	} else {
		reasons = append(reasons, "commerce observability limited")
	}
	if metric(in.Metrics, MetricMomentumHits, 0) >= 2 {
		reasons = append(reasons, "momentum terms present")
	} else {
		reasons = append(reasons, "momentum terms sparse")
	}
	return c, reasons
}

// DealStructure picks an entry structure from the score profile.
func DealStructure(heat, risk, asymmetry, capitalRequired float64) string {
	switch {
	case asymmetry > 78 && risk < 55 && capitalRequired < 30:
		return "Minority growth investment"
	case asymmetry > 80 && risk < 65 && capitalRequired >= 30:
		return "Debt plus earnout"
	case heat > 82 && risk <= 60:
		return "IP partnership"
	case risk > 70:
		return "Licensing structure"
	default:
		return "Control acquisition"
	}
}

// OwnershipTargetForStructure maps a deal structure to its stake range.
func OwnershipTargetForStructure(structure string) string {
	switch structure {
	case "Minority growth investment":
		return "15%-30%"
	case "Control acquisition":
		return "51%-70%"
	case "IP partnership":
		return "20%-35%"
	case "Licensing structure":
		return "5%-15% royalty + call option"
	case "Debt plus earnout":
		return "20%-40% equity equivalent"
	default:
		return "20%-35%"
	}
}

// ComputeScorecard reduces one brand's signal window to a weekly snapshot.
func (e *Engine) ComputeScorecard(in ScoreInput) contracts.Scorecard {
	heat := e.HeatScore(in.Metrics)
	risk := e.RiskScore(in.Metrics)
	capitalIntensity := e.CapitalIntensity(in.Brand.Category, in.Metrics)
	asymmetry := e.AsymmetryIndex(heat, risk, capitalIntensity)
	p10, p50, p90 := e.revenueBands(in.Brand.Category, in.Metrics)
	capitalRequired := e.capitalRequired(p50, capitalIntensity)
	conf, reasons := e.confidence(in)

	deltaHeat := 0.0
	if in.HasPrevHeat {
		deltaHeat = heat - in.PrevHeat
	}

	return contracts.Scorecard{
		BrandID:                in.Brand.ID,
		SnapshotWeek:           in.SnapshotWeek,
		HeatScore:              round2(heat),
		RiskScore:              round2(risk),
		AsymmetryIndex:         round2(asymmetry),
		CapitalIntensity:       round2(capitalIntensity),
		RevenueP10:             round2(p10),
		RevenueP50:             round2(p50),
		RevenueP90:             round2(p90),
		DeltaHeat:              round2(deltaHeat),
		Confidence:             round3(conf),
		ConfidenceReasons:      reasons,
		CapitalRequiredMUSD:    round2(capitalRequired),
		SuggestedDealStructure: DealStructure(heat, risk, asymmetry, capitalRequired),
		DeeperAnalysisRequired: round2(heat) >= contracts.DeeperAnalysisThreshold,
	}
}

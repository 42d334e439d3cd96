package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/hellogreencow/burch/internal/contracts"
)

type signalConfig struct {
	metric string
	label  string
	source string
}

var socialSignalConfig = []signalConfig{
	{MetricInstagramVelocity, "Instagram follower velocity", "social_proxy"},
	{MetricTikTokVelocity, "TikTok follower velocity", "social_proxy"},
	{MetricEngagementRate, "Engagement rate", "engagement_proxy"},
	{MetricCommentsToLikes, "Comments-to-likes ratio", "engagement_proxy"},
	{MetricRepeatCommenter, "Repeat commenter density", "engagement_proxy"},
	{MetricInfluencerOverlap, "Influencer tag overlap", "network_proxy"},
	{MetricUGCReposts, "UGC repost frequency", "ugc_proxy"},
}

var commerceSignalConfig = []signalConfig{
	{MetricWebsiteTraffic, "Website traffic estimate (k/mo)", "commerce_proxy"},
	{MetricSKUCount, "SKU count", "commerce_proxy"},
	{MetricSelloutVelocity, "Sellout velocity", "commerce_proxy"},
	{MetricMetaAdActivity, "Meta Ad Library activity", "ad_proxy"},
	{MetricHiringVelocity, "Hiring velocity", "hiring_proxy"},
	{MetricStockistExpansion, "Retail stockist expansion", "retail_proxy"},
}

var searchCulturalSignalConfig = []signalConfig{
	{MetricGoogleTrends, "Google Trends velocity", "search_proxy"},
	{MetricRedditMentions, "Reddit mention frequency", "reddit"},
	{MetricPinterestSaves, "Pinterest saves velocity", "search_proxy"},
	{MetricBlogMentions, "Substack/blog mentions", "news"},
	{MetricResaleActivity, "Resale platform activity", "market_proxy"},
}

// currentAndDelta reduces one metric's observation history to its latest
// value and the change across the trailing window.
func currentAndDelta(obs []contracts.SignalObservation, name string) (current, delta float64) {
	var points []contracts.SignalObservation
	for _, o := range obs {
		if o.Metric == name {
			points = append(points, o)
		}
	}
	if len(points) == 0 {
		return 0, 0
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].ObservedAt.Before(points[j].ObservedAt) })
	first := points[0].Value
	last := points[len(points)-1].Value
	return last, last - first
}

func avgMetric(obs []contracts.SignalObservation, name string, def float64) float64 {
	var sum float64
	var n int
	for _, o := range obs {
		if o.Metric == name {
			sum += o.Value
			n++
		}
	}
	if n == 0 {
		return def
	}
	return sum / float64(n)
}

func signalPoints(obs []contracts.SignalObservation, cfg []signalConfig) []contracts.SignalPoint {
	out := make([]contracts.SignalPoint, 0, len(cfg))
	for _, c := range cfg {
		current, delta := currentAndDelta(obs, c.metric)
		out = append(out, contracts.SignalPoint{
			Metric:   c.label,
			Current:  round3(current),
			Delta12W: round3(delta),
			Source:   c.source,
		})
	}
	return out
}

// BuildDataCollectionSnapshot groups the observation window into the three
// collection layers.
func BuildDataCollectionSnapshot(obs []contracts.SignalObservation) contracts.DataCollectionSnapshot {
	return contracts.DataCollectionSnapshot{
		SocialSignals:            signalPoints(obs, socialSignalConfig),
		CommerceSignals:          signalPoints(obs, commerceSignalConfig),
		SearchCulturalSignals:    signalPoints(obs, searchCulturalSignalConfig),
		AccelerationPriorityNote: "Signals prioritize velocity and acceleration over absolute scale.",
	}
}

// BuildEngagementBreakdown decomposes a scorecard back into its engagement
// components.
func BuildEngagementBreakdown(card contracts.Scorecard, obs []contracts.SignalObservation) contracts.EngagementBreakdown {
	quality := avgMetric(obs, MetricEngagementQuality, 0.86)
	return contracts.EngagementBreakdown{
		CommentsToLikesRatio:   round3(clamp(0.03+quality*0.1, 0.03, 0.35)),
		RepeatCommenterDensity: round3(clamp(0.18+card.HeatScore/160+card.Confidence*0.2, 0.15, 0.92)),
		UGCDepthScore:          round2(clamp(card.HeatScore*0.72+card.DeltaHeat*1.8, 5, 99)),
		SentimentScore:         round2(clamp(58+card.HeatScore*0.28-card.RiskScore*0.32, 5, 99)),
		InfluencerOverlapScore: round2(clamp(35+card.HeatScore*0.35+card.AsymmetryIndex*0.25, 5, 99)),
		GeographicSpreadScore:  round2(clamp(24+card.HeatScore*0.42-card.RiskScore*0.12, 5, 99)),
	}
}

// BuildFinancialInference derives the revenue-model assumptions from a
// scorecard and the category AOV baseline. When the storefront catalog has
// been observed, its median price replaces the baseline.
func BuildFinancialInference(card contracts.Scorecard, category string, obs []contracts.SignalObservation) contracts.FinancialInference {
	aov, ok := AOVByCategory[category]
	if !ok {
		aov = defaultAOV
	}
	aovNote := "Revenue proxy uses traffic x conversion x average order value baseline."
	if observed, _ := currentAndDelta(obs, MetricMedianPriceUSD); observed > 0 {
		aov = observed
		aovNote = "Revenue proxy uses traffic x conversion x observed storefront median price."
	}
	conversionPct := clamp(1.1+card.HeatScore/58-card.RiskScore/160, 0.7, 5.5)
	trafficKMo := card.RevenueP50 * 1_000_000 / math.Max(1.0, aov*(conversionPct/100)) / 1000
	skuEstimate := int(clamp(math.Round(card.RevenueP50*1.7+card.CapitalIntensity*0.55), 10, 600))

	var flags []string
	if card.HeatScore >= contracts.DeeperAnalysisThreshold && card.RevenueP50 < 25 {
		flags = append(flags, "High Heat with Low Revenue")
	}
	if card.RevenueP50 >= 80 && card.CapitalIntensity >= 55 {
		flags = append(flags, "High Revenue with Operational Inefficiency")
	}
	if card.RevenueP50 >= 70 && card.AsymmetryIndex >= 65 {
		flags = append(flags, "High Revenue with Underleveraged IP")
	}
	if len(flags) == 0 {
		flags = append(flags, "No critical financial asymmetry flags triggered.")
	}

	return contracts.FinancialInference{
		TrafficEstimateKMo:       round2(trafficKMo),
		ConversionAssumptionPct:  round2(conversionPct),
		AverageOrderValueUSD:     round2(aov),
		SKUCountEstimate:         skuEstimate,
		SellThroughAssumptionPct: round2(clamp(52+card.HeatScore*0.3-card.RiskScore*0.16, 30, 97)),
		GrossMarginEstimatePct:   round2(clamp(28+card.AsymmetryIndex*0.31-card.CapitalIntensity*0.11, 15, 87)),
		CACProxyUSD:              round2(clamp(aov*(0.34+card.RiskScore/240+card.CapitalIntensity/300), 7, 350)),
		LTVProxyUSD:              round2(clamp(aov*(1.6+card.HeatScore/70+card.AsymmetryIndex/130), 35, 1800)),
		ScenarioFlags:            flags,
		InferenceNotes: []string{
			aovNote,
			"Cross-check includes SKU x price x estimated sell-through.",
			"Hiring/ad-activity momentum is treated as directional, not definitive.",
		},
	}
}

func riskBucket(v float64) string {
	switch {
	case v < 36:
		return "low"
	case v < 68:
		return "medium"
	default:
		return "high"
	}
}

// BuildRiskScan summarizes the dependency and legal risk posture.
func BuildRiskScan(card contracts.Scorecard, evidence []contracts.EvidenceCitation, snapshot contracts.ProductionSnapshot) contracts.RiskScan {
	registryVerified := false
	for _, e := range evidence {
		if e.Source == "public_registry" {
			registryVerified = true
			break
		}
	}

	var trademark string
	switch {
	case registryVerified && card.RiskScore < 45:
		trademark = "strong"
	case card.RiskScore < 70:
		trademark = "moderate"
	default:
		trademark = "weak"
	}

	var litigationFlags []string
	switch {
	case card.RiskScore > 78:
		litigationFlags = []string{
			"Potential litigation sensitivity detected in claims, labeling, or IP perimeter.",
			"Manual legal counsel review recommended before outreach escalation.",
		}
	case card.RiskScore > 62:
		litigationFlags = []string{"Moderate legal sensitivity; verify trademark classes and open disputes."}
	default:
		litigationFlags = []string{"No active litigation flags detected in available public signals."}
	}

	platformRaw := card.RiskScore*0.55 + (100-card.AsymmetryIndex)*0.45
	algorithmRaw := card.HeatScore*0.62 + math.Abs(card.DeltaHeat)*6.0
	supplierRaw := card.CapitalIntensity*0.7 + card.RiskScore*0.3

	founderScore := clamp(28+card.AsymmetryIndex*0.38+math.Max(0, 80-card.RevenueP50)*0.18, 8, 98)

	keyRisks := []string{
		fmt.Sprintf("Platform dependency risk is %s.", riskBucket(platformRaw)),
		fmt.Sprintf("Algorithm exposure risk is %s.", riskBucket(algorithmRaw)),
		fmt.Sprintf("Supplier concentration risk is %s.", riskBucket(supplierRaw)),
		fmt.Sprintf("Primary operational bottleneck: %s", snapshot.Bottlenecks[0]),
	}

	return contracts.RiskScan{
		TrademarkStrength:         trademark,
		CorporateRegistryVerified: registryVerified,
		LitigationFlags:           litigationFlags,
		PlatformDependencyRisk:    riskBucket(platformRaw),
		AlgorithmExposureRisk:     riskBucket(algorithmRaw),
		SupplierConcentrationRisk: riskBucket(supplierRaw),
		FounderDependencyScore:    round2(founderScore),
		KeyRisks:                  keyRisks,
	}
}

func founderAlignmentThesis(name string, card contracts.Scorecard) string {
	tone := "measured"
	if card.DeeperAnalysisRequired {
		tone = "high-urgency"
	}
	return fmt.Sprintf(
		"%s appears founder-led with a %s opportunity to align on growth while preserving brand voice. "+
			"Anchor around safeguarding creative control, improving operating cadence, and using capital against "+
			"the highest-friction constraint (risk=%.1f, asymmetry=%.1f).",
		name, tone, card.RiskScore, card.AsymmetryIndex)
}

func draftOutreachEmail(name, structure, ownershipTarget string, capitalRequired float64) string {
	return fmt.Sprintf(
		"Subject: %s growth partnership discussion\n\n"+
			"Hi [Founder Name],\n\n"+
			"We've been tracking %s's acceleration and see strong potential to support the next phase of growth. "+
			"Our initial view is a %s with a target stake of %s and about $%.1fM of growth capital.\n\n"+
			"If helpful, we can share a concise operating blueprint covering supply-chain resilience, "+
			"COGS reduction levers, and scenario-tested downside protections.\n\n"+
			"Would you be open to a short intro call next week?\n\n"+
			"Best,\nBURCH",
		name, name, strings.ToLower(structure), ownershipTarget, capitalRequired)
}

// BuildProfile assembles the full brand view from the stored window. Every
// section is a deterministic transform, so identical inputs always produce
// an identical profile.
func (e *Engine) BuildProfile(
	brand contracts.Brand,
	card contracts.Scorecard,
	evidence []contracts.EvidenceCitation,
	obs []contracts.SignalObservation,
) contracts.BrandProfile {
	inputs := ProductionInputs{
		Category:         brand.Category,
		HeatScore:        card.HeatScore,
		RiskScore:        card.RiskScore,
		AsymmetryIndex:   card.AsymmetryIndex,
		CapitalIntensity: card.CapitalIntensity,
		RevenueP50:       card.RevenueP50,
		Confidence:       card.Confidence,
	}
	snapshot := BuildProductionSnapshot(inputs)
	options := BuildProductionOptions(inputs)
	costDown := BuildCostOpportunities(inputs)

	ownershipTarget := OwnershipTargetForStructure(card.SuggestedDealStructure)
	plan := contracts.DealStructuringPlan{
		SuggestedEntryStrategy:       card.SuggestedDealStructure,
		SuggestedOwnershipTargetPct:  ownershipTarget,
		EstimatedCapitalRequiredMUSD: round2(card.CapitalRequiredMUSD),
		FounderAlignmentThesis:       founderAlignmentThesis(brand.Name, card),
		DraftOutreachEmail:           draftOutreachEmail(brand.Name, card.SuggestedDealStructure, ownershipTarget, card.CapitalRequiredMUSD),
		DeeperAnalysisRequired:       card.DeeperAnalysisRequired,
	}

	memo := fmt.Sprintf(
		"%s shows heat %.1f, asymmetry %.1f, and risk %.1f. Revenue midpoint is $%.1fM with "+
			"capital requirement around $%.1fM. Suggested structure: %s targeting %s. "+
			"Current production model is %s with %.1f%% to %.1f%% cost-down potential from the lead procurement lever.",
		brand.Name, card.HeatScore, card.AsymmetryIndex, card.RiskScore, card.RevenueP50,
		card.CapitalRequiredMUSD, card.SuggestedDealStructure, ownershipTarget,
		strings.ToLower(snapshot.CurrentModel), costDown[0].EstimatedSavingsPctLow, costDown[0].EstimatedSavingsPctHigh)

	return contracts.BrandProfile{
		Brand:                      brand,
		Scorecard:                  card,
		Confidence:                 contracts.ConfidenceEnvelope{Overall: card.Confidence, Reasons: card.ConfidenceReasons},
		Evidence:                   evidence,
		ProductionSnapshot:         snapshot,
		ProductionOptions:          options,
		CostReductionOpportunities: costDown,
		DataCollectionSnapshot:     BuildDataCollectionSnapshot(obs),
		EngagementBreakdown:        BuildEngagementBreakdown(card, obs),
		FinancialInference:         BuildFinancialInference(card, brand.Category, obs),
		RiskScan:                   BuildRiskScan(card, evidence, snapshot),
		DealStructuring:            plan,
		MemoPreview:                memo,
	}
}

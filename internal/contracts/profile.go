package contracts

// ProductionSnapshot summarizes how a brand currently manufactures and where
// the unit economics are under pressure.
type ProductionSnapshot struct {
	CurrentModel          string   `json:"current_model"`
	UnitEconomicsPressure string   `json:"unit_economics_pressure"`
	Bottlenecks           []string `json:"bottlenecks"`
	Confidence            float64  `json:"confidence"`
}

// ProductionOption is one candidate restructuring of the production model.
type ProductionOption struct {
	OptionName          string  `json:"option_name"`
	Mode                string  `json:"mode"`
	EstimatedSavingsPct float64 `json:"estimated_savings_pct"`
	CapexImpactMUSD     float64 `json:"capex_impact_musd"`
	TimeToImpactMonths  int     `json:"time_to_impact_months"`
	ExecutionRisk       string  `json:"execution_risk"`
	Rationale           string  `json:"rationale"`
}

// CostOpportunity is a single cost-down lever with a savings range.
type CostOpportunity struct {
	Title                   string  `json:"title"`
	Lever                   string  `json:"lever"`
	EstimatedSavingsPctLow  float64 `json:"estimated_savings_pct_low"`
	EstimatedSavingsPctHigh float64 `json:"estimated_savings_pct_high"`
	Confidence              float64 `json:"confidence"`
	Rationale               string  `json:"rationale"`
}

// SignalPoint is the latest reading of one metric plus its trailing delta.
type SignalPoint struct {
	Metric   string  `json:"metric"`
	Current  float64 `json:"current"`
	Delta12W float64 `json:"delta_12w"`
	Source   string  `json:"source"`
}

// DataCollectionSnapshot groups the signal window into the three collection
// layers the scoring engine reads from.
type DataCollectionSnapshot struct {
	SocialSignals            []SignalPoint `json:"social_signals"`
	CommerceSignals          []SignalPoint `json:"commerce_signals"`
	SearchCulturalSignals    []SignalPoint `json:"search_cultural_signals"`
	AccelerationPriorityNote string        `json:"acceleration_priority_note"`
}

// EngagementBreakdown decomposes the heat inputs into their raw components.
type EngagementBreakdown struct {
	CommentsToLikesRatio   float64 `json:"comments_to_likes_ratio"`
	RepeatCommenterDensity float64 `json:"repeat_commenter_density"`
	UGCDepthScore          float64 `json:"ugc_depth_score"`
	SentimentScore         float64 `json:"sentiment_score"`
	InfluencerOverlapScore float64 `json:"influencer_overlap_score"`
	GeographicSpreadScore  float64 `json:"geographic_spread_score"`
}

// FinancialInference carries revenue-model assumptions derived from the
// signal window and category constants.
type FinancialInference struct {
	TrafficEstimateKMo       float64  `json:"traffic_estimate_kmo"`
	ConversionAssumptionPct  float64  `json:"conversion_assumption_pct"`
	AverageOrderValueUSD     float64  `json:"average_order_value_usd"`
	SKUCountEstimate         int      `json:"sku_count_estimate"`
	SellThroughAssumptionPct float64  `json:"sell_through_assumption_pct"`
	GrossMarginEstimatePct   float64  `json:"gross_margin_estimate_pct"`
	CACProxyUSD              float64  `json:"cac_proxy_usd"`
	LTVProxyUSD              float64  `json:"ltv_proxy_usd"`
	ScenarioFlags            []string `json:"scenario_flags"`
	InferenceNotes           []string `json:"inference_notes"`
}

// RiskScan summarizes the concentration and dependency risk factors.
type RiskScan struct {
	TrademarkStrength         string   `json:"trademark_strength"`
	CorporateRegistryVerified bool     `json:"corporate_registry_verified"`
	LitigationFlags           []string `json:"litigation_flags"`
	PlatformDependencyRisk    string   `json:"platform_dependency_risk"`
	AlgorithmExposureRisk     string   `json:"algorithm_exposure_risk"`
	SupplierConcentrationRisk string   `json:"supplier_concentration_risk"`
	FounderDependencyScore    float64  `json:"founder_dependency_score"`
	KeyRisks                  []string `json:"key_risks"`
}

// DealStructuringPlan is the draft entry plan for a brand.
type DealStructuringPlan struct {
	SuggestedEntryStrategy       string  `json:"suggested_entry_strategy"`
	SuggestedOwnershipTargetPct  string  `json:"suggested_ownership_target_pct"`
	EstimatedCapitalRequiredMUSD float64 `json:"estimated_capital_required_musd"`
	FounderAlignmentThesis       string  `json:"founder_alignment_thesis"`
	DraftOutreachEmail           string  `json:"draft_outreach_email"`
	DeeperAnalysisRequired       bool    `json:"deeper_analysis_required"`
}

// BrandProfile is the full per-brand view: identity, current scorecard,
// evidence, and every derived section. All sections are deterministic
// transforms of the stored signal window.
type BrandProfile struct {
	Brand                      Brand                  `json:"brand"`
	Scorecard                  Scorecard              `json:"scorecard"`
	Confidence                 ConfidenceEnvelope     `json:"confidence"`
	Evidence                   []EvidenceCitation     `json:"evidence"`
	ProductionSnapshot         ProductionSnapshot     `json:"production_snapshot"`
	ProductionOptions          []ProductionOption     `json:"production_options"`
	CostReductionOpportunities []CostOpportunity      `json:"cost_reduction_opportunities"`
	DataCollectionSnapshot     DataCollectionSnapshot `json:"data_collection_snapshot"`
	EngagementBreakdown        EngagementBreakdown    `json:"engagement_breakdown"`
	FinancialInference         FinancialInference     `json:"financial_inference"`
	RiskScan                   RiskScan               `json:"risk_scan"`
	DealStructuring            DealStructuringPlan    `json:"deal_structuring"`
	MemoPreview                string                 `json:"memo_preview"`
}

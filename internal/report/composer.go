package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hellogreencow/burch/internal/contracts"
	"github.com/hellogreencow/burch/internal/store"
	"github.com/hellogreencow/burch/pkg/logger"
)

const batchDefaultLimit = 20

// ProfileSource is the slice of the universe the composer needs.
type ProfileSource interface {
	Profile(brandID string) (contracts.BrandProfile, error)
	Feed(sortKey contracts.SortKey, search string, limit int) contracts.FeedResponse
}

// Composer renders the two-page investment brief for a brand and records
// each generated artifact.
type Composer struct {
	source     ProfileSource
	store      *store.Store
	log        *logger.Logger
	reportsDir string
	now        func() time.Time
}

func NewComposer(source ProfileSource, st *store.Store, log *logger.Logger, reportsDir string) *Composer {
	return &Composer{
		source:     source,
		store:      st,
		log:        log,
		reportsDir: reportsDir,
		now:        time.Now,
	}
}

func onFlag(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func writeSignalGroup(b *strings.Builder, title string, signals []contracts.SignalPoint) {
	fmt.Fprintf(b, "### %s\n\n", title)
	for _, s := range signals {
		prefix := ""
		if s.Delta12W >= 0 {
			prefix = "+"
		}
		fmt.Fprintf(b, "- %s: %.3f (%s%.3f over 12w) [%s]\n", s.Metric, s.Current, prefix, s.Delta12W, s.Source)
	}
	b.WriteString("\n")
}

// render produces the markdown body of the brief. history is the brand's
// full scorecard sequence, oldest first; prev is the snapshot before the
// current one when one exists.
func render(profile contracts.BrandProfile, history []contracts.Scorecard, prev contracts.Scorecard, hasPrev bool) string {
	var b strings.Builder

	card := profile.Scorecard
	fmt.Fprintf(&b, "# BURCH-EIDOLON Investment Brief: %s\n\n", profile.Brand.Name)

	b.WriteString("## Executive Snapshot\n\n")
	fmt.Fprintf(&b, "- Category: %s\n", profile.Brand.Category)
	fmt.Fprintf(&b, "- Region: %s\n", profile.Brand.Region)
	fmt.Fprintf(&b, "- Heat: %.1f | Risk: %.1f | Asymmetry: %.1f\n", card.HeatScore, card.RiskScore, card.AsymmetryIndex)
	fmt.Fprintf(&b, "- Revenue (P10/P50/P90): $%.1fM / $%.1fM / $%.1fM\n", card.RevenueP10, card.RevenueP50, card.RevenueP90)
	fmt.Fprintf(&b, "- Capital required: $%.1fM\n", card.CapitalRequiredMUSD)
	fmt.Fprintf(&b, "- Deeper analysis trigger (Heat >= %.0f): %s\n", contracts.DeeperAnalysisThreshold, onFlag(card.DeeperAnalysisRequired))
	if hasPrev {
		fmt.Fprintf(&b, "- Heat vs prior week: %+.1f (prior %.1f)\n", card.HeatScore-prev.HeatScore, prev.HeatScore)
	}
	if len(history) > 1 {
		start := len(history) - 8
		if start < 0 {
			start = 0
		}
		b.WriteString("- Heat history:")
		for _, h := range history[start:] {
			fmt.Fprintf(&b, " %.1f", h.HeatScore)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("## Investment Thesis\n\n")
	b.WriteString(profile.MemoPreview)
	b.WriteString("\n\n")

	b.WriteString("## Deal Structuring Engine\n\n")
	deal := profile.DealStructuring
	fmt.Fprintf(&b, "- Suggested entry strategy: %s\n", deal.SuggestedEntryStrategy)
	fmt.Fprintf(&b, "- Suggested ownership target: %s\n", deal.SuggestedOwnershipTargetPct)
	fmt.Fprintf(&b, "- Estimated capital required: $%.1fM\n\n", deal.EstimatedCapitalRequiredMUSD)
	b.WriteString(deal.FounderAlignmentThesis)
	b.WriteString("\n\n")

	b.WriteString("## Production Options + Cost-Down Plan\n\n")
	snap := profile.ProductionSnapshot
	fmt.Fprintf(&b, "- Current production model: %s\n", snap.CurrentModel)
	fmt.Fprintf(&b, "- Unit economics pressure: %s\n", snap.UnitEconomicsPressure)
	if len(snap.Bottlenecks) > 0 {
		fmt.Fprintf(&b, "- Primary bottleneck: %s\n", snap.Bottlenecks[0])
	}
	b.WriteString("\n")
	for i, option := range profile.ProductionOptions {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&b, "- %s: est. savings %.1f%% | capex delta $%.1fM | time-to-impact %d months | risk %s\n",
			option.OptionName, option.EstimatedSavingsPct, option.CapexImpactMUSD, option.TimeToImpactMonths, option.ExecutionRisk)
	}
	b.WriteString("\n")
	for i, opp := range profile.CostReductionOpportunities {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&b, "- %s: %.1f%% to %.1f%% potential savings (%s, confidence %.2f)\n",
			opp.Title, opp.EstimatedSavingsPctLow, opp.EstimatedSavingsPctHigh, opp.Lever, opp.Confidence)
	}
	b.WriteString("\n---\n\n")

	b.WriteString("## Data Collection Layer Snapshot\n\n")
	dcs := profile.DataCollectionSnapshot
	b.WriteString(dcs.AccelerationPriorityNote)
	b.WriteString("\n\n")
	writeSignalGroup(&b, "Social Signals", dcs.SocialSignals)
	writeSignalGroup(&b, "Commerce Signals", dcs.CommerceSignals)
	writeSignalGroup(&b, "Search + Cultural Signals", dcs.SearchCulturalSignals)

	b.WriteString("## Engagement Breakdown\n\n")
	eng := profile.EngagementBreakdown
	fmt.Fprintf(&b, "- Comments/Likes ratio: %.3f\n", eng.CommentsToLikesRatio)
	fmt.Fprintf(&b, "- Repeat commenter density: %.3f\n", eng.RepeatCommenterDensity)
	fmt.Fprintf(&b, "- UGC depth: %.1f | Sentiment: %.1f\n\n", eng.UGCDepthScore, eng.SentimentScore)

	b.WriteString("## Financial Inference Model\n\n")
	fin := profile.FinancialInference
	fmt.Fprintf(&b, "- Traffic estimate: %.1fk visits/mo\n", fin.TrafficEstimateKMo)
	fmt.Fprintf(&b, "- Conversion assumption: %.2f%%\n", fin.ConversionAssumptionPct)
	fmt.Fprintf(&b, "- AOV: $%.2f | SKU estimate: %d\n", fin.AverageOrderValueUSD, fin.SKUCountEstimate)
	fmt.Fprintf(&b, "- Sell-through assumption: %.1f%%\n", fin.SellThroughAssumptionPct)
	fmt.Fprintf(&b, "- Gross margin estimate: %.1f%%\n", fin.GrossMarginEstimatePct)
	fmt.Fprintf(&b, "- CAC proxy: $%.1f | LTV proxy: $%.1f\n", fin.CACProxyUSD, fin.LTVProxyUSD)
	for _, flag := range fin.ScenarioFlags {
		fmt.Fprintf(&b, "- %s\n", flag)
	}
	b.WriteString("\n")

	b.WriteString("## Risk + Resilience Scan\n\n")
	risk := profile.RiskScan
	fmt.Fprintf(&b, "- Trademark strength: %s\n", risk.TrademarkStrength)
	fmt.Fprintf(&b, "- Corporate registry verified: %s\n", yesNo(risk.CorporateRegistryVerified))
	fmt.Fprintf(&b, "- Platform dependency: %s\n", risk.PlatformDependencyRisk)
	fmt.Fprintf(&b, "- Algorithm exposure: %s\n", risk.AlgorithmExposureRisk)
	fmt.Fprintf(&b, "- Supplier concentration: %s\n", risk.SupplierConcentrationRisk)
	fmt.Fprintf(&b, "- Founder dependency score: %.1f\n", risk.FounderDependencyScore)
	for _, flag := range risk.LitigationFlags {
		fmt.Fprintf(&b, "- %s\n", flag)
	}
	for i, item := range risk.KeyRisks {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&b, "- %s\n", item)
	}
	b.WriteString("\n")

	b.WriteString("## Structured Outreach Draft\n\n")
	b.WriteString(deal.DraftOutreachEmail)
	b.WriteString("\n\n")

	b.WriteString("## Workflow Alignment\n\n")
	b.WriteString("Workflow: Cultural signal -> Engagement analysis -> Financial inference -> Risk scan -> Structured outreach.\n")
	b.WriteString("Principle: prioritize acceleration and rate-of-change over absolute scale.\n\n")

	b.WriteString("## Key Evidence\n\n")
	for i, item := range profile.Evidence {
		if i >= 6 {
			break
		}
		fmt.Fprintf(&b, "- %s (%s)\n", item.Title, item.Source)
	}

	return b.String()
}

// Generate renders one brand's brief to the reports directory and records
// the resulting artifact.
func (c *Composer) Generate(brandID string) (contracts.ReportArtifact, error) {
	profile, err := c.source.Profile(brandID)
	if err != nil {
		return contracts.ReportArtifact{}, err
	}

	timestamp := c.now().UTC()
	if err := os.MkdirAll(c.reportsDir, 0o755); err != nil {
		return contracts.ReportArtifact{}, &contracts.ArtifactGenerationError{BrandID: brandID, Stage: "mkdir", Err: err}
	}

	filename := fmt.Sprintf("%s_%s_%s.md",
		profile.Brand.ID,
		timestamp.Format("20060102T150405Z"),
		uuid.NewString()[:8],
	)
	outputPath := filepath.Join(c.reportsDir, filename)

	prev, hasPrev := c.store.PreviousScorecard(brandID)
	body := render(profile, c.store.ScorecardHistory(brandID), prev, hasPrev)
	if err := os.WriteFile(outputPath, []byte(body), 0o644); err != nil {
		return contracts.ReportArtifact{}, &contracts.ArtifactGenerationError{BrandID: brandID, Stage: "write", Err: err}
	}

	summary := fmt.Sprintf(
		"Generated 2-page report for %s with %s recommendation, ownership target %s, and production/cost-down plan plus data-collection snapshot.",
		profile.Brand.Name,
		profile.Scorecard.SuggestedDealStructure,
		profile.DealStructuring.SuggestedOwnershipTargetPct,
	)

	artifact := contracts.ReportArtifact{
		BrandID:     profile.Brand.ID,
		GeneratedAt: timestamp,
		Path:        outputPath,
		Summary:     summary,
	}
	c.store.RecordReport(artifact)

	c.log.WithFields(map[string]interface{}{
		"brand_id": profile.Brand.ID,
		"path":     outputPath,
	}).Info("report generated")

	return artifact, nil
}

// GenerateTopRanked renders briefs for the current top of the heat feed.
func (c *Composer) GenerateTopRanked(limit int) (contracts.ReportBatchArtifact, error) {
	if limit <= 0 {
		limit = batchDefaultLimit
	}
	feed := c.source.Feed(contracts.SortHeat, "", limit)

	batch := contracts.ReportBatchArtifact{GeneratedAt: c.now().UTC()}
	for _, item := range feed.Items {
		artifact, err := c.Generate(item.BrandID)
		if err != nil {
			return contracts.ReportBatchArtifact{}, err
		}
		batch.Reports = append(batch.Reports, artifact)
	}
	batch.Count = len(batch.Reports)
	return batch, nil
}

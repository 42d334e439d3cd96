package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ayush6624/go-chatgpt"

	"github.com/hellogreencow/burch/internal/contracts"
	"github.com/hellogreencow/burch/pkg/logger"
)

// Mode names accepted in ChatRequest.Mode.
const (
	ModeAnalysis       = "analysis"
	ModeMemo           = "memo"
	ModeDiligence      = "diligence"
	ModeProductionPlan = "production_plan"
)

// ProfileSource loads the grounding context for a chat turn.
type ProfileSource interface {
	Profile(brandID string) (contracts.BrandProfile, error)
}

// Service answers diligence questions. With an API key configured it calls
// the model and parses a structured reply; without one, or on any model
// failure, it falls back to a deterministic answer derived from the brand
// profile so chat never invents facts.
type Service struct {
	source ProfileSource
	client *chatgpt.Client
	model  chatgpt.ChatGPTModel
	log    *logger.Logger
}

func NewService(source ProfileSource, apiKey string, log *logger.Logger) *Service {
	svc := &Service{
		source: source,
		model:  chatgpt.GPT4,
		log:    log,
	}
	if apiKey != "" {
		client, err := chatgpt.NewClient(apiKey)
		if err != nil {
			log.WithError(err).Warn("chat client init failed, running in fallback mode")
		} else {
			svc.client = client
		}
	}
	return svc
}

func modeGuidance(mode string) string {
	switch mode {
	case ModeProductionPlan:
		return "Mode is production_plan. Build an actionable production-cost plan with sections: " +
			"Current production model; Top 3 cheaper production options; 30/60/90-day execution plan; " +
			"Expected savings range; key risks and mitigations."
	case ModeMemo:
		return "Mode is memo. Deliver concise investment memo style output with thesis, downside, and structure."
	case ModeDiligence:
		return "Mode is diligence. Emphasize unknowns, verification steps, and confidence caveats."
	default:
		return "Mode is analysis. Provide clear synthesis with practical next actions."
	}
}

// refusalTriggers are phrases that indicate the model denied context it was
// actually given. Answers containing one are replaced by the grounded
// fallback.
var refusalTriggers = []string{
	"cannot provide",
	"no data",
	"insufficient data",
	"only contains information about",
	"we would need",
	"run a fresh analysis",
	"not enough information",
}

func deniesContext(answer string) bool {
	lower := strings.ToLower(answer)
	for _, trigger := range refusalTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}

func groundedAnswer(profile contracts.BrandProfile, mode string) string {
	topOption := profile.ProductionOptions[0]
	topCost := profile.CostReductionOpportunities[0]
	if mode == ModeProductionPlan {
		return fmt.Sprintf(
			"%s production cost-down plan:\n"+
				"Current model: %s.\n"+
				"Top cheaper options: (1) %s, (2) %s, (3) %s.\n"+
				"30/60/90 plan: 30d baseline unit economics + vendor map, "+
				"60d execute targeted rebids/pilots, "+
				"90d renegotiate and scale winning production mix.\n"+
				"Expected savings: %.1f%% to %.1f%% with %s execution risk.",
			profile.Brand.Name,
			profile.ProductionSnapshot.CurrentModel,
			profile.ProductionOptions[0].OptionName,
			profile.ProductionOptions[1].OptionName,
			profile.ProductionOptions[2].OptionName,
			topCost.EstimatedSavingsPctLow,
			topCost.EstimatedSavingsPctHigh,
			topOption.ExecutionRisk,
		)
	}
	return fmt.Sprintf(
		"%s is currently at Heat %.1f, Risk %.1f, Asymmetry %.1f, Revenue P50 $%.1fM. "+
			"Most practical cost-down path is %s with %.1f%% estimated savings and %d month time-to-impact. "+
			"Deal structure baseline: %s at %s ownership target.",
		profile.Brand.Name,
		profile.Scorecard.HeatScore,
		profile.Scorecard.RiskScore,
		profile.Scorecard.AsymmetryIndex,
		profile.Scorecard.RevenueP50,
		topOption.OptionName,
		topOption.EstimatedSavingsPct,
		topOption.TimeToImpactMonths,
		profile.DealStructuring.SuggestedEntryStrategy,
		profile.DealStructuring.SuggestedOwnershipTargetPct,
	)
}

func fallbackResponse(profile *contracts.BrandProfile, mode string) contracts.ChatResponse {
	if profile != nil {
		citations := profile.Evidence
		if len(citations) > 6 {
			citations = citations[:6]
		}
		return contracts.ChatResponse{
			Answer:     groundedAnswer(*profile, mode),
			Confidence: 0.72,
			Citations:  citations,
			Model:      "fallback-profile-grounded",
		}
	}
	return contracts.ChatResponse{
		Answer: "AI is not configured (missing OPENAI_API_KEY) and no brand context is available. " +
			"Select a brand from the feed to get a deterministic, grounded summary, or set OPENAI_API_KEY to enable chat.",
		Confidence: 0.2,
		Citations:  []contracts.EvidenceCitation{},
		Model:      "fallback-no-context",
	}
}

// buildContext flattens the profile into the grounding block sent to the
// model.
func buildContext(profile contracts.BrandProfile) string {
	var lines []string
	add := func(format string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	add("Brand: %s", profile.Brand.Name)
	add("Category: %s", profile.Brand.Category)
	add("Region: %s", profile.Brand.Region)
	add("Heat: %.2f", profile.Scorecard.HeatScore)
	add("Risk: %.2f", profile.Scorecard.RiskScore)
	add("Asymmetry: %.2f", profile.Scorecard.AsymmetryIndex)
	add("Revenue P50: %.2f", profile.Scorecard.RevenueP50)
	add("Capital required: %.2f", profile.Scorecard.CapitalRequiredMUSD)
	add("Deeper analysis required: %t", profile.Scorecard.DeeperAnalysisRequired)
	add("Production model estimate: %s", profile.ProductionSnapshot.CurrentModel)
	add("Unit economics pressure: %s", profile.ProductionSnapshot.UnitEconomicsPressure)
	add("Production bottlenecks:")
	for _, bottleneck := range profile.ProductionSnapshot.Bottlenecks {
		add("- %s", bottleneck)
	}
	add("Production options:")
	for i, option := range profile.ProductionOptions {
		if i >= 4 {
			break
		}
		add("- %s | mode=%s | savings=%.1f%% | time=%d months | risk=%s",
			option.OptionName, option.Mode, option.EstimatedSavingsPct, option.TimeToImpactMonths, option.ExecutionRisk)
	}
	add("Cost-down opportunities:")
	for i, opp := range profile.CostReductionOpportunities {
		if i >= 3 {
			break
		}
		add("- %s | lever=%s | savings=%.1f-%.1f%%", opp.Title, opp.Lever, opp.EstimatedSavingsPctLow, opp.EstimatedSavingsPctHigh)
	}
	add("Data collection layer snapshot (current | delta_12w | source):")
	groups := []struct {
		title   string
		signals []contracts.SignalPoint
	}{
		{"Social signals:", profile.DataCollectionSnapshot.SocialSignals},
		{"Commerce signals:", profile.DataCollectionSnapshot.CommerceSignals},
		{"Search + cultural signals:", profile.DataCollectionSnapshot.SearchCulturalSignals},
	}
	for _, group := range groups {
		add(group.title)
		for _, s := range group.signals {
			add("- %s | current=%.3f | delta_12w=%.3f | source=%s", s.Metric, s.Current, s.Delta12W, s.Source)
		}
	}
	add("Acceleration priority note: %s", profile.DataCollectionSnapshot.AccelerationPriorityNote)
	add("Engagement breakdown:")
	add("- comments_to_likes=%.3f | repeat_density=%.3f | sentiment=%.1f",
		profile.EngagementBreakdown.CommentsToLikesRatio,
		profile.EngagementBreakdown.RepeatCommenterDensity,
		profile.EngagementBreakdown.SentimentScore)
	add("Financial inference:")
	add("- traffic_kmo=%.1f | conversion_pct=%.2f | gross_margin_pct=%.1f | cac=%.1f | ltv=%.1f",
		profile.FinancialInference.TrafficEstimateKMo,
		profile.FinancialInference.ConversionAssumptionPct,
		profile.FinancialInference.GrossMarginEstimatePct,
		profile.FinancialInference.CACProxyUSD,
		profile.FinancialInference.LTVProxyUSD)
	add("Financial scenario flags:")
	for _, flag := range profile.FinancialInference.ScenarioFlags {
		add("- %s", flag)
	}
	add("Risk scan summary:")
	add("- trademark=%s | registry_verified=%t | platform_dependency=%s | algorithm_exposure=%s | supplier_concentration=%s | founder_dependency_score=%.1f",
		profile.RiskScan.TrademarkStrength,
		profile.RiskScan.CorporateRegistryVerified,
		profile.RiskScan.PlatformDependencyRisk,
		profile.RiskScan.AlgorithmExposureRisk,
		profile.RiskScan.SupplierConcentrationRisk,
		profile.RiskScan.FounderDependencyScore)
	add("Deal structuring:")
	add("- strategy=%s | ownership_target=%s | capital_required=%.2f",
		profile.DealStructuring.SuggestedEntryStrategy,
		profile.DealStructuring.SuggestedOwnershipTargetPct,
		profile.DealStructuring.EstimatedCapitalRequiredMUSD)
	add("Founder alignment thesis:")
	add("- %s", profile.DealStructuring.FounderAlignmentThesis)
	add("Evidence:")
	for i, ev := range profile.Evidence {
		if i >= 10 {
			break
		}
		add("- %s | %s | %s", ev.Title, ev.URL, ev.Source)
	}
	return strings.Join(lines, "\n")
}

const systemPrompt = "You are BURCH-EIDOLON's diligence analyst. Return strict JSON with keys: " +
	"answer (string), confidence (0..1), citations (array of objects: title,url,source,snippet). " +
	"Always include at least 2 citations if available from provided evidence. " +
	"Every answer must stay grounded in the deal-flow workflow and explicitly include production options " +
	"plus cost-reduction opportunities when relevant. " +
	"Prioritize acceleration/rate-of-change interpretation over absolute scale when signals conflict. " +
	"When a brand is selected, include a clear view on ownership target, capital required, and outreach posture."

const workflowBlock = "Deal-flow workflow anchor:\n" +
	"Cultural signal -> Engagement analysis -> Financial inference -> Risk scan -> Structured outreach\n\n" +
	"Outputs to include when relevant:\n" +
	"- Heat score (0-100), revenue range proxy, capital intensity proxy, risk score (0-100), asymmetry index\n" +
	"- Suggested deal structure, ownership target, capital required\n" +
	"- Production/cost-down hypotheses and a verification plan\n\n" +
	"Rule: if evidence is insufficient, say so and list what to verify next. Never invent facts."

type modelReply struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
	Citations  []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Source  string `json:"source"`
		Snippet string `json:"snippet"`
	} `json:"citations"`
}

// extractJSON tolerates prose wrapped around the JSON object.
func extractJSON(content string) (modelReply, bool) {
	var reply modelReply
	if err := json.Unmarshal([]byte(content), &reply); err == nil {
		return reply, true
	}
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(content[start:end+1]), &reply); err == nil {
			return reply, true
		}
	}
	return modelReply{}, false
}

func (s *Service) Chat(ctx context.Context, req contracts.ChatRequest) (contracts.ChatResponse, error) {
	var profile *contracts.BrandProfile
	if req.BrandID != "" {
		p, err := s.source.Profile(req.BrandID)
		if err != nil {
			return contracts.ChatResponse{}, err
		}
		profile = &p
	}

	if s.client == nil {
		return fallbackResponse(profile, req.Mode), nil
	}

	messages := []chatgpt.ChatMessage{
		{Role: chatgpt.ChatGPTModelRoleSystem, Content: systemPrompt},
		{Role: chatgpt.ChatGPTModelRoleSystem, Content: modeGuidance(req.Mode)},
		{Role: chatgpt.ChatGPTModelRoleSystem, Content: workflowBlock},
	}
	if profile != nil {
		messages = append(messages, chatgpt.ChatMessage{
			Role:    chatgpt.ChatGPTModelRoleSystem,
			Content: buildContext(*profile),
		})
	}
	for _, m := range req.Messages {
		role := chatgpt.ChatGPTModelRoleUser
		if m.Role == "assistant" {
			role = chatgpt.ChatGPTModelRoleAssistant
		}
		messages = append(messages, chatgpt.ChatMessage{Role: role, Content: m.Content})
	}

	res, err := s.client.Send(ctx, &chatgpt.ChatCompletionRequest{
		Model:       s.model,
		Messages:    messages,
		Temperature: 0.2,
	})
	if err != nil {
		s.log.WithError(err).Warn("chat model call failed, using grounded fallback")
		return fallbackResponse(profile, req.Mode), nil
	}
	if len(res.Choices) == 0 {
		return fallbackResponse(profile, req.Mode), nil
	}

	reply, ok := extractJSON(strings.TrimSpace(res.Choices[0].Message.Content))
	if !ok {
		return fallbackResponse(profile, req.Mode), nil
	}

	citations := make([]contracts.EvidenceCitation, 0, len(reply.Citations))
	for i, c := range reply.Citations {
		if i >= 8 {
			break
		}
		title := c.Title
		if title == "" {
			title = "Untitled citation"
		}
		source := c.Source
		if source == "" {
			source = "unknown"
		}
		citations = append(citations, contracts.EvidenceCitation{
			Title:   title,
			URL:     c.URL,
			Source:  source,
			Snippet: c.Snippet,
		})
	}
	if len(citations) == 0 && profile != nil {
		citations = profile.Evidence
		if len(citations) > 4 {
			citations = citations[:4]
		}
	}

	confidence := reply.Confidence
	if confidence <= 0 {
		confidence = 0.55
	}
	if confidence > 1 {
		confidence = 1
	}

	answer := reply.Answer
	if answer == "" {
		answer = "Insufficient model output; returning conservative summary."
	}

	// Guardrail: if a brand is selected, reject replies that deny the
	// context they were given.
	if profile != nil && deniesContext(answer) {
		if len(citations) > 6 {
			citations = citations[:6]
		}
		if confidence < 0.72 {
			confidence = 0.72
		}
		return contracts.ChatResponse{
			Answer:     groundedAnswer(*profile, req.Mode),
			Confidence: confidence,
			Citations:  citations,
			Model:      string(s.model) + "+guardrail",
		}, nil
	}

	if profile != nil && !strings.Contains(strings.ToLower(answer), strings.ToLower(profile.Brand.Name)) {
		answer = profile.Brand.Name + ": " + answer
	}

	return contracts.ChatResponse{
		Answer:     answer,
		Confidence: confidence,
		Citations:  citations,
		Model:      string(s.model),
	}, nil
}

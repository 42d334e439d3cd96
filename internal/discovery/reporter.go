package discovery

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/hellogreencow/burch/internal/contracts"
	"github.com/hellogreencow/burch/internal/providers"
	"github.com/hellogreencow/burch/pkg/logger"
)

// Discovery briefs are built from sparse external snippets only, so their
// confidence is capped strictly below the first-party scorecard floor.
const (
	confidenceFloor = 0.25
	confidenceCeil  = 0.58
)

const (
	DefaultLimit = 12
	MaxLimit     = 25
)

var sourceReliability = map[string]float64{
	"reddit":          0.72,
	"news":            0.78,
	"public_registry": 0.84,
	"searxng":         0.62,
	"google":          0.68,
	"bing":            0.66,
	"duckduckgo":      0.64,
}

var momentumTerms = []string{
	"growth", "surge", "expansion", "viral", "record", "raised",
	"launch", "partnership", "opening", "scale", "scaled", "momentum",
}

var riskTerms = []string{
	"lawsuit", "recall", "decline", "bankrupt", "shutdown", "layoff",
	"controversy", "investigation", "ban", "fraud", "default", "warning",
}

var genericNameTerms = map[string]bool{
	"best": true, "top": true, "guide": true, "list": true, "trend": true,
	"trends": true, "market": true, "markets": true, "industry": true,
	"insights": true, "news": true, "review": true, "reviews": true,
	"analysis": true, "report": true, "reports": true, "companies": true,
	"brands": true, "consumer": true, "startup": true, "startups": true,
}

var legalSuffixes = map[string]bool{
	"inc": true, "llc": true, "ltd": true, "co": true, "company": true,
	"corp": true, "corporation": true, "plc": true, "gmbh": true, "srl": true,
}

var publisherHostHints = []string{
	"forbes", "techcrunch", "wikipedia", "reddit", "youtube", "linkedin",
	"substack", "bloomberg", "fortune", "medium", "nytimes", "wsj",
	"businessinsider", "theverge", "axios",
}

var (
	titleSplitRe = regexp.MustCompile(`\s[-|:]\s`)
	wordRe       = regexp.MustCompile(`[a-z0-9]+`)
	spaceRe      = regexp.MustCompile(`\s+`)
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9 ]+`)
)

// Reporter runs the on-demand discovery pipeline: query plan, candidate
// dedupe, opportunity scoring and narrative synthesis. It is independent
// of the stored universe.
type Reporter struct {
	router *providers.Router
	log    *logger.Logger
	now    func() time.Time
}

func NewReporter(router *providers.Router, log *logger.Logger) *Reporter {
	return &Reporter{router: router, log: log, now: time.Now}
}

func cleanText(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func tokenize(s string) map[string]bool {
	out := make(map[string]bool)
	for _, tok := range wordRe.FindAllString(strings.ToLower(s), -1) {
		if len(tok) >= 3 {
			out[tok] = true
		}
	}
	return out
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

func sourceWeight(source string) float64 {
	lowered := strings.ToLower(source)
	for key, w := range sourceReliability {
		if strings.Contains(lowered, key) {
			return w
		}
	}
	return 0.58
}

func domainLabel(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(strings.Split(parsed.Host, ":")[0])
	var parts []string
	for _, p := range strings.Split(host, ".") {
		if p != "" && p != "www" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	var core string
	switch {
	case len(parts) >= 3 && len(parts[len(parts)-1]) == 2 &&
		(parts[len(parts)-2] == "co" || parts[len(parts)-2] == "com" || parts[len(parts)-2] == "org" || parts[len(parts)-2] == "net"):
		core = parts[len(parts)-3]
	case len(parts) >= 2:
		core = parts[len(parts)-2]
	default:
		core = parts[0]
	}
	return strings.TrimSpace(nonAlnumRe.ReplaceAllString(core, " "))
}

func titleCaseWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func normalizeCompanyName(name string) string {
	cleaned := nonAlnumRe.ReplaceAllString(strings.ToLower(name), " ")
	var tokens []string
	for _, tok := range strings.Fields(cleaned) {
		if !legalSuffixes[tok] {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) > 6 {
		tokens = tokens[:6]
	}
	return strings.Join(tokens, " ")
}

func isGenericName(normName string) bool {
	if normName == "" {
		return true
	}
	tokens := strings.Fields(normName)
	if len(tokens) <= 1 {
		return true
	}
	hits := 0
	for _, tok := range tokens {
		if genericNameTerms[tok] {
			hits++
		}
	}
	threshold := len(tokens) / 2
	if threshold < 1 {
		threshold = 1
	}
	return hits >= threshold
}

func isPublisherHost(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Host)
	for _, hint := range publisherHostHints {
		if strings.Contains(host, hint) {
			return true
		}
	}
	return false
}

func nameGuessFromTitle(title string) string {
	cleaned := cleanText(title)
	if cleaned == "" {
		return "Unknown"
	}
	guess := titleSplitRe.Split(cleaned, -1)[0]
	words := strings.Fields(guess)
	if len(words) > 7 {
		guess = strings.Join(words[:7], " ")
	}
	return guess
}

// DeriveCompanyName guesses the company behind a search hit from its title,
// falling back to the domain label when the title is a generic listicle.
// The universe seeder shares it to turn search hits into brand identities.
func DeriveCompanyName(title, rawURL string) string {
	guess := nameGuessFromTitle(title)
	if isGenericName(normalizeCompanyName(guess)) {
		if domain := titleCaseWords(domainLabel(rawURL)); domain != "" && !isPublisherHost(rawURL) {
			return domain
		}
	}
	return guess
}

func entityKey(companyName, rawURL string) string {
	normName := normalizeCompanyName(companyName)
	if normName == "" || isGenericName(normName) {
		domain := normalizeCompanyName(domainLabel(rawURL))
		if domain == "" {
			domain = "unknown"
		}
		return "domain:" + domain
	}
	tokens := strings.Fields(normName)
	if len(tokens) > 3 {
		tokens = tokens[:3]
	}
	return "name:" + strings.Join(tokens, " ")
}

func queryPlan(industry, region string) []string {
	geo := ""
	if region != "" {
		geo = " " + region
	}
	return []string{
		fmt.Sprintf("emerging %s consumer brand%s", industry, geo),
		fmt.Sprintf("%s d2c brand growth%s", industry, geo),
		fmt.Sprintf("%s startup retail expansion%s", industry, geo),
		fmt.Sprintf("%s founder-led company momentum%s", industry, geo),
	}
}

func estimatedRevenueBand(fit, momentum float64) string {
	composite := fit*0.55 + momentum*0.45
	switch {
	case composite < 45:
		return "$5M-$20M"
	case composite < 60:
		return "$20M-$60M"
	case composite < 75:
		return "$60M-$150M"
	default:
		return "$150M-$350M"
	}
}

func dealStructure(fit, momentum, risk, asymmetry float64) string {
	switch {
	case asymmetry >= 72 && risk <= 45:
		return "Minority growth investment"
	case risk >= 68:
		return "Licensing structure"
	case fit >= 70 && momentum >= 65:
		return "IP partnership"
	case asymmetry >= 66 && risk < 60:
		return "Debt plus earnout"
	default:
		return "Control acquisition"
	}
}

func costDownAngle(industry string) string {
	i := strings.ToLower(industry)
	switch {
	case strings.Contains(i, "beauty") || strings.Contains(i, "skin") || strings.Contains(i, "cosmetic") || strings.Contains(i, "personal care"):
		return "Contract fill-finish rebid plus packaging simplification to compress COGS."
	case strings.Contains(i, "food") || strings.Contains(i, "beverage") || strings.Contains(i, "snack"):
		return "Co-packer lane optimization and ingredient contract rebid for procurement savings."
	case strings.Contains(i, "apparel") || strings.Contains(i, "fashion") || strings.Contains(i, "outdoor"):
		return "Supplier portfolio rebalance with regionalized finishing to reduce material and freight pressure."
	case strings.Contains(i, "home") || strings.Contains(i, "furniture"):
		return "SKU architecture cleanup and 3PL lane optimization to lower landed cost volatility."
	case strings.Contains(i, "tech") || strings.Contains(i, "electronics"):
		return "OEM repricing and component dual-sourcing to lower unit cost risk."
	default:
		return "Strategic contract rebid and regional fulfillment optimization as primary cost-down lever."
	}
}

func termHits(tokens map[string]bool, terms []string) int {
	hits := 0
	for _, t := range terms {
		if tokens[t] {
			hits++
		}
	}
	return hits
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

func scoreCompany(candidate contracts.DiscoveryCandidate, industry, region string) contracts.CompanyOpportunityReport {
	text := strings.ToLower(cleanText(fmt.Sprintf("%s %s %s %s", candidate.NameGuess, candidate.Title, candidate.Snippet, candidate.Query)))
	textTokens := tokenize(text)
	industryTokens := tokenize(industry)
	regionTokens := tokenize(region)

	overlap := func(have map[string]bool) float64 {
		if len(have) == 0 {
			return 0
		}
		matches := 0
		for tok := range have {
			if textTokens[tok] {
				matches++
			}
		}
		return float64(matches) / float64(len(have))
	}
	industryOverlap := overlap(industryTokens)
	regionOverlap := overlap(regionTokens)

	weight := sourceWeight(candidate.Source)
	momentumHits := float64(termHits(textTokens, momentumTerms))
	riskHits := float64(termHits(textTokens, riskTerms))

	fit := clamp(42+industryOverlap*42+regionOverlap*10+weight*10, 5, 99)
	momentum := clamp(34+momentumHits*8+weight*22, 5, 99)
	risk := clamp(20+riskHits*15+(1-weight)*18, 5, 98)
	asymmetry := clamp(fit*0.5+momentum*0.35-risk*0.23+19, 5, 98)

	confidence := clamp(0.25+weight*0.2+fit/600+momentum/700-risk/900, confidenceFloor, confidenceCeil)

	structure := dealStructure(fit, momentum, risk, asymmetry)

	return contracts.CompanyOpportunityReport{
		Name:                    candidate.NameGuess,
		SourceURL:               candidate.URL,
		Source:                  candidate.Source,
		FitScore:                round2(fit),
		MomentumScore:           round2(momentum),
		RiskScore:               round2(risk),
		AsymmetryScore:          round2(asymmetry),
		EstimatedRevenueBand:    estimatedRevenueBand(fit, momentum),
		SuggestedDealStructure:  structure,
		ProductionCostDownAngle: costDownAngle(industry),
		OpportunityThesis: fmt.Sprintf(
			"%s shows fit %.1f and momentum %.1f in %s signals. Asymmetry is estimated at %.1f with risk %.1f; best initial structure is %s.",
			candidate.NameGuess, fit, momentum, strings.ToLower(industry), asymmetry, risk, strings.ToLower(structure)),
		NextStep: "Run full dossier pull: engagement breakdown, financial inference, risk scan, and founder outreach draft before outreach.",
		KeyRisks: []string{
			fmt.Sprintf("Signal-derived risk score sits at %.1f; validate legal/IP perimeter before term-sheet motion.", risk),
			"Platform/channel concentration may amplify volatility; map channel mix and dependency caps.",
			"Supplier concentration and lead-time risk should be stress-tested under demand acceleration.",
		},
		DiligenceQuestions: []string{
			"What is the verified 12-month net revenue and gross margin trend by channel?",
			"Which suppliers represent >20% of COGS and what alternate capacity exists?",
			"What founder priorities are non-negotiable in ownership and governance design?",
		},
		CostDownActions: []string{
			"Run strategic contract rebid across top spend categories and key manufacturing nodes.",
			"Regionalize fulfillment lanes to reduce freight volatility and shorten lead times.",
			"Simplify SKU and packaging architecture to reduce MOQ drag and conversion complexity.",
		},
		ExecutionPlan306090: []string{
			"30d: build COGS baseline, supplier map, and channel economics view.",
			"60d: launch targeted RFPs, pilot dual-source options, and validate savings assumptions.",
			"90d: lock negotiated terms, rollout winning lanes, and track realized savings versus plan.",
		},
		Confidence: round3(confidence),
	}
}

func reportRank(r contracts.CompanyOpportunityReport) float64 {
	return r.FitScore*0.45 + r.AsymmetryScore*0.35 + r.Confidence*20 - r.RiskScore*0.2
}

func medianOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m, err := stats.Median(values)
	if err != nil {
		return 0
	}
	return m
}

func buildTopSignals(reports []contracts.CompanyOpportunityReport, attempts []contracts.ProviderAttempt) []string {
	if len(reports) == 0 {
		return []string{"No strong candidate signals yet."}
	}

	successful := 0
	for _, a := range attempts {
		if a.Err == "" {
			successful++
		}
	}

	var fits, risks, asyms []float64
	for _, r := range reports {
		fits = append(fits, r.FitScore)
		risks = append(risks, r.RiskScore)
		asyms = append(asyms, r.AsymmetryScore)
	}
	top := reports[0]

	return []string{
		fmt.Sprintf("Successful query lanes: %d/%d.", successful, len(attempts)),
		fmt.Sprintf("Top candidate: %s (fit %.1f, asymmetry %.1f).", top.Name, top.FitScore, top.AsymmetryScore),
		fmt.Sprintf("Median fit %.1f, median risk %.1f, median asymmetry %.1f.", medianOf(fits), medianOf(risks), medianOf(asyms)),
	}
}

func buildNarrative(industry, region string, reports []contracts.CompanyOpportunityReport) string {
	geo := ""
	if region != "" {
		geo = " in " + region
	}
	if len(reports) == 0 {
		return fmt.Sprintf("No high-confidence companies found for %s%s. Try broader terms or remove region filter.", industry, geo)
	}
	top := reports
	if len(top) > 3 {
		top = top[:3]
	}
	names := make([]string, 0, len(top))
	for _, r := range top {
		names = append(names, r.Name)
	}
	return fmt.Sprintf(
		"Discovery pass for %s%s surfaced %d unique candidate companies. Highest-priority names are %s. "+
			"Focus first diligence on production cost-down leverage and ownership-fit alignment.",
		industry, geo, len(reports), strings.Join(names, ", "))
}

// Discover runs the full pipeline for one industry query. It fails with
// DiscoveryUnavailableError only when every provider failed on every query
// lane; a successful lane with zero usable candidates yields an empty
// report instead.
func (r *Reporter) Discover(ctx context.Context, industry, region string, limit int) (contracts.DiscoverResponse, error) {
	industry = cleanText(industry)
	if industry == "" {
		return contracts.DiscoverResponse{}, &contracts.InvalidParameterError{Param: "industry", Reason: "must not be empty"}
	}
	region = cleanText(region)
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	queries := queryPlan(industry, region)
	perQuery := (limit + len(queries) - 1) / len(queries)
	if perQuery < 3 {
		perQuery = 3
	}
	if perQuery > 10 {
		perQuery = 10
	}

	var (
		allAttempts []contracts.ProviderAttempt
		candidates  []contracts.DiscoveryCandidate
		seenPages   = make(map[string]bool)
		anyLaneOK   bool
	)

	for _, query := range queries {
		provider, results, attempts, err := r.router.Search(ctx, query, perQuery)
		allAttempts = append(allAttempts, attempts...)
		if err != nil {
			var unavailable *contracts.DiscoveryUnavailableError
			if errors.As(err, &unavailable) {
				continue
			}
			return contracts.DiscoverResponse{}, err
		}
		anyLaneOK = true
		_ = provider

		for _, result := range results {
			resURL := cleanText(result.URL)
			title := cleanText(result.Title)
			if resURL == "" || title == "" {
				continue
			}
			parsed, err := url.Parse(resURL)
			if err != nil {
				continue
			}
			pageKey := strings.ToLower(parsed.Host) + "|" + strings.ToLower(title)
			if seenPages[pageKey] {
				continue
			}
			seenPages[pageKey] = true

			candidates = append(candidates, contracts.DiscoveryCandidate{
				NameGuess: DeriveCompanyName(title, resURL),
				Title:     title,
				URL:       resURL,
				Snippet:   cleanText(result.Snippet),
				Source:    result.Source,
				Query:     query,
			})
			if len(candidates) >= limit {
				break
			}
		}
		if len(candidates) >= limit {
			break
		}
	}

	if !anyLaneOK {
		return contracts.DiscoverResponse{}, &contracts.DiscoveryUnavailableError{Query: industry, Attempts: allAttempts}
	}

	// Entity-resolution pass: one candidate per company, best report wins.
	var uniqueCandidates []contracts.DiscoveryCandidate
	bestByEntity := make(map[string]contracts.CompanyOpportunityReport)
	var entityOrder []string
	for _, c := range candidates {
		key := entityKey(c.NameGuess, c.URL)
		report := scoreCompany(c, industry, region)
		if existing, ok := bestByEntity[key]; ok {
			if reportRank(report) > reportRank(existing) {
				bestByEntity[key] = report
			}
			continue
		}
		bestByEntity[key] = report
		entityOrder = append(entityOrder, key)
		uniqueCandidates = append(uniqueCandidates, c)
	}

	reports := make([]contracts.CompanyOpportunityReport, 0, len(entityOrder))
	for _, key := range entityOrder {
		reports = append(reports, bestByEntity[key])
	}
	sort.SliceStable(reports, func(i, j int) bool {
		if reports[i].FitScore != reports[j].FitScore {
			return reports[i].FitScore > reports[j].FitScore
		}
		if reports[i].AsymmetryScore != reports[j].AsymmetryScore {
			return reports[i].AsymmetryScore > reports[j].AsymmetryScore
		}
		return reports[i].RiskScore < reports[j].RiskScore
	})

	reportCap := limit
	if reportCap > 10 {
		reportCap = 10
	}
	if len(reports) > reportCap {
		reports = reports[:reportCap]
	}
	if len(uniqueCandidates) > limit {
		uniqueCandidates = uniqueCandidates[:limit]
	}

	if r.log != nil {
		r.log.WithFields(map[string]interface{}{
			"industry":   industry,
			"candidates": len(uniqueCandidates),
			"reports":    len(reports),
		}).Info("discovery pass complete")
	}

	return contracts.DiscoverResponse{
		GeneratedAt:      r.now().UTC(),
		Industry:         industry,
		Region:           region,
		ProviderAttempts: allAttempts,
		Items:            uniqueCandidates,
		Report: contracts.IndustryReport{
			Industry:       industry,
			Region:         region,
			Narrative:      buildNarrative(industry, region, reports),
			TopSignals:     buildTopSignals(reports, allAttempts),
			CompanyReports: reports,
		},
	}, nil
}

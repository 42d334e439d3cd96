package universe

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/hellogreencow/burch/internal/contracts"
	"github.com/hellogreencow/burch/internal/discovery"
	"github.com/hellogreencow/burch/internal/enrich"
	"github.com/hellogreencow/burch/internal/providers"
	"github.com/hellogreencow/burch/internal/scoring"
	"github.com/hellogreencow/burch/internal/store"
	"github.com/hellogreencow/burch/pkg/logger"
)

// Evidence caps: enriched brands carry a deeper citation set.
const (
	evidenceCapBaseline = 4
	evidenceCapEnriched = 12
)

// UniverseEvent is broadcast to live subscribers after a batch mutation.
type UniverseEvent struct {
	Type        string    `json:"type"`
	Brands      int       `json:"brands"`
	Created     int       `json:"created"`
	Updated     int       `json:"updated"`
	Snapshots   int       `json:"snapshots"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Notifier receives universe events. The live websocket hub implements it.
type Notifier interface {
	PublishUniverseEvent(event UniverseEvent)
}

// Options are the optional collaborators; any of them may be nil.
type Options struct {
	Archive  *store.Archive
	Router   *providers.Router
	Fetcher  *enrich.Fetcher
	Notifier Notifier
	Namer    NamerConfig
	Rand     *rand.Rand
	Now      func() time.Time
}

// Manager owns brand identity creation, population seeding and the ranked
// feed. All mutation goes through reseed/refresh; reads never block on a
// running batch.
type Manager struct {
	store    *store.Store
	engine   *scoring.Engine
	log      *logger.Logger
	archive  *store.Archive
	router   *providers.Router
	fetcher  *enrich.Fetcher
	notifier Notifier
	namerCfg NamerConfig
	rng      *rand.Rand
	now      func() time.Time
}

func NewManager(st *store.Store, engine *scoring.Engine, log *logger.Logger, opts Options) *Manager {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		store:    st,
		engine:   engine,
		log:      log,
		archive:  opts.Archive,
		router:   opts.Router,
		fetcher:  opts.Fetcher,
		notifier: opts.Notifier,
		namerCfg: opts.Namer,
		rng:      opts.Rand,
		now:      opts.Now,
	}
}

// SetNotifier attaches the live event sink. Call before serving traffic.
func (m *Manager) SetNotifier(n Notifier) {
	m.notifier = n
}

func stableBrandID(entityKey string) string {
	digest := sha1.Sum([]byte(entityKey))
	return "brand-" + hex.EncodeToString(digest[:])[:12]
}

// mondayOfWeek normalizes a time to its snapshot week.
func mondayOfWeek(t time.Time) time.Time {
	t = t.UTC().Truncate(24 * time.Hour)
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return t.AddDate(0, 0, -(weekday - 1))
}

// seedCandidate is a live search hit promoted to a brand identity.
type seedCandidate struct {
	name    string
	title   string
	url     string
	snippet string
	source  string
}

// discoverSeedCandidates pulls candidate identities from the provider
// chain. Best effort: a missing router or failed lanes just mean the
// batch is filled synthetically.
func (m *Manager) discoverSeedCandidates(ctx context.Context, limit int) []seedCandidate {
	if m.router == nil || limit <= 0 {
		return nil
	}

	lanes := make([]string, 0, 4)
	for _, idx := range m.rng.Perm(len(categories))[:4] {
		lanes = append(lanes, fmt.Sprintf("emerging %s consumer brand", strings.ToLower(categories[idx])))
	}
	perQuery := limit/len(lanes) + 1
	if perQuery < 3 {
		perQuery = 3
	}
	if perQuery > 10 {
		perQuery = 10
	}

	seen := make(map[string]bool)
	var out []seedCandidate
	for _, lane := range lanes {
		_, results, _, err := m.router.Search(ctx, lane, perQuery)
		if err != nil {
			continue
		}
		for _, r := range results {
			if r.URL == "" || r.Title == "" {
				continue
			}
			name := CanonicalDisplayName(discovery.DeriveCompanyName(r.Title, r.URL))
			key := EntityKeyFromName(name)
			if key == "" || name == "Unknown" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, seedCandidate{name: name, title: r.Title, url: r.URL, snippet: r.Snippet, source: r.Source})
			if len(out) >= limit {
				return out
			}
		}
	}
	return out
}

// createBrandFromCandidate promotes one discovered candidate. Returns
// false when the name is already taken, never an error: a rejected
// candidate leaves room for synthetic fill.
func (m *Manager) createBrandFromCandidate(c seedCandidate, reserved map[string]bool, now time.Time) (contracts.Brand, bool) {
	key := EntityKeyFromName(c.name)
	if key == "" || reserved[key] || m.store.HasEntityKey(key) {
		return contracts.Brand{}, false
	}
	reserved[key] = true

	category, region, website, description := synthBrandAttrs(m.rng, c.name)
	brand := contracts.Brand{
		ID:          stableBrandID(key),
		Name:        c.name,
		EntityKey:   key,
		Category:    category,
		Region:      region,
		Website:     website,
		Description: description,
	}
	m.store.PutBrand(brand)
	m.store.AppendObservations(brand.ID, synthObservations(m.rng, brand.ID, now))
	citations := append(synthEvidence(m.rng, brand, false), contracts.EvidenceCitation{
		Title:       c.title,
		URL:         c.url,
		Snippet:     c.snippet,
		Source:      c.source,
		Reliability: 0.65,
	})
	m.store.AddEvidence(brand.ID, citations, evidenceCapBaseline)
	return brand, true
}

// createBrand generates one synthetic brand and its signal window.
func (m *Manager) createBrand(namer *Namer, reserved map[string]bool, now time.Time) (contracts.Brand, error) {
	name, key, err := namer.Next(reserved)
	if err != nil {
		return contracts.Brand{}, err
	}
	reserved[key] = true

	category, region, website, description := synthBrandAttrs(m.rng, name)
	brand := contracts.Brand{
		ID:          stableBrandID(key),
		Name:        name,
		EntityKey:   key,
		Category:    category,
		Region:      region,
		Website:     website,
		Description: description,
	}
	m.store.PutBrand(brand)
	m.store.AppendObservations(brand.ID, synthObservations(m.rng, brand.ID, now))
	m.store.AddEvidence(brand.ID, synthEvidence(m.rng, brand, false), evidenceCapBaseline)
	return brand, nil
}

// enrichBrand deepens a top brand's evidence set. When live collaborators
// are wired it also pulls real search evidence and storefront metadata;
// failures there degrade the signal, never the batch.
func (m *Manager) enrichBrand(ctx context.Context, brand contracts.Brand) bool {
	m.store.AddEvidence(brand.ID, synthEvidence(m.rng, brand, true), evidenceCapEnriched)

	catalogObserved := false
	if m.router != nil {
		_, results, _, err := m.router.Search(ctx, `"`+brand.Name+`" `+brand.Website, 10)
		if err == nil {
			citations := make([]contracts.EvidenceCitation, 0, len(results))
			for _, r := range results {
				if r.URL == "" {
					continue
				}
				citations = append(citations, contracts.EvidenceCitation{
					Title:       r.Title,
					URL:         r.URL,
					Snippet:     r.Snippet,
					Source:      r.Source,
					Reliability: 0.65,
				})
			}
			m.store.AddEvidence(brand.ID, citations, evidenceCapEnriched)
		}
	}
	if m.fetcher != nil {
		if meta, err := m.fetcher.FetchMetadata(ctx, brand.Website); err == nil && meta.Description != "" {
			brand.Description = meta.Description
			m.store.PutBrand(brand)
		}
		if catalog, ok := m.fetcher.FetchCatalog(ctx, brand.Website); ok && catalog.ProductCount > 0 {
			catalogObserved = true
			obs := []contracts.SignalObservation{{
				BrandID:    brand.ID,
				Metric:     scoring.MetricSKUCount,
				ObservedAt: m.now(),
				Value:      float64(catalog.ProductCount),
				Source:     "storefront",
			}}
			if catalog.MedianPriceUSD > 0 {
				obs = append(obs, contracts.SignalObservation{
					BrandID:    brand.ID,
					Metric:     scoring.MetricMedianPriceUSD,
					ObservedAt: m.now(),
					Value:      catalog.MedianPriceUSD,
					Source:     "storefront",
				})
			}
			m.store.AppendObservations(brand.ID, obs)
		}
	}
	return catalogObserved
}

func (m *Manager) scoreBrandSafe(ctx context.Context, brand contracts.Brand, catalogObserved bool, week time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scoring panic: %v", r)
		}
	}()
	m.scoreBrand(ctx, brand, catalogObserved, week)
	return nil
}

// scoreBrand recomputes one brand's weekly scorecard from stored state.
func (m *Manager) scoreBrand(ctx context.Context, brand contracts.Brand, catalogObserved bool, week time.Time) contracts.Scorecard {
	evidence := m.store.Evidence(brand.ID)
	uniqueSources := make(map[string]bool)
	for _, e := range evidence {
		uniqueSources[strings.ToLower(e.Source)] = true
	}

	prevHeat := 0.0
	hasPrev := false
	if prev, ok := m.store.CurrentScorecard(brand.ID); ok {
		prevHeat = prev.HeatScore
		hasPrev = true
	}

	card := m.engine.ComputeScorecard(scoring.ScoreInput{
		Brand:           brand,
		SnapshotWeek:    week,
		Metrics:         latestValues(m.store.LatestByMetric(brand.ID)),
		PrevHeat:        prevHeat,
		HasPrevHeat:     hasPrev,
		EvidenceCount:   len(evidence),
		UniqueSources:   len(uniqueSources),
		CatalogObserved: catalogObserved,
	})
	m.store.AppendScorecard(card)

	if m.archive != nil {
		if err := m.archive.SaveSnapshot(ctx, card); err != nil {
			m.log.WithError(err).WithField("brand_id", brand.ID).Warn("snapshot archive failed")
		}
	}
	return card
}

func latestValues(latest map[string]contracts.SignalObservation) map[string]float64 {
	out := make(map[string]float64, len(latest))
	for metric, o := range latest {
		out[metric] = o.Value
	}
	return out
}

// Reseed rebuilds the universe from scratch: all prior brands, signals
// and snapshots are discarded.
func (m *Manager) Reseed(ctx context.Context, targetBrands, enrichTopN int) (contracts.SeedResult, error) {
	if targetBrands < 1 {
		return contracts.SeedResult{}, &contracts.InvalidParameterError{Param: "target_brands", Reason: "must be at least 1"}
	}
	if enrichTopN < 0 {
		return contracts.SeedResult{}, &contracts.InvalidParameterError{Param: "enrich_top_n", Reason: "must not be negative"}
	}

	m.store.BeginMutation()
	defer m.store.EndMutation()

	started := m.now()
	m.store.Reset()

	namer := NewNamer(m.namerCfg, m.rng, m.store.HasEntityKey)
	reserved := make(map[string]bool)
	brands := make([]contracts.Brand, 0, targetBrands)

	// Live search hits seed real identities first; synthetic brands fill
	// the remainder of the target.
	for _, c := range m.discoverSeedCandidates(ctx, targetBrands) {
		if len(brands) >= targetBrands {
			break
		}
		if brand, ok := m.createBrandFromCandidate(c, reserved, started); ok {
			brands = append(brands, brand)
		}
	}
	for len(brands) < targetBrands {
		brand, err := m.createBrand(namer, reserved, started)
		if err != nil {
			var seedErr *contracts.SeedError
			if errors.As(err, &seedErr) {
				seedErr.Requested = targetBrands
				seedErr.Generated = len(brands)
			}
			return contracts.SeedResult{}, err
		}
		brands = append(brands, brand)
	}

	result := m.scoreBatch(ctx, brands, enrichTopN, started)
	result.Created = len(brands)

	m.log.WithFields(map[string]interface{}{
		"brands":     result.Brands,
		"snapshots":  result.Snapshots,
		"elapsed_ms": time.Since(started).Milliseconds(),
	}).Info("universe reseed complete")

	m.publish("reseed", result, started)
	return result, nil
}

// Refresh tops the population up toward the target and appends a new week
// of observations to every brand without discarding history.
func (m *Manager) Refresh(ctx context.Context, targetBrands, enrichTopN int) (contracts.SeedResult, error) {
	if targetBrands < 1 {
		return contracts.SeedResult{}, &contracts.InvalidParameterError{Param: "target_brands", Reason: "must be at least 1"}
	}
	if enrichTopN < 0 {
		return contracts.SeedResult{}, &contracts.InvalidParameterError{Param: "enrich_top_n", Reason: "must not be negative"}
	}

	m.store.BeginMutation()
	defer m.store.EndMutation()

	started := m.now()
	existing := m.store.Brands()

	namer := NewNamer(m.namerCfg, m.rng, m.store.HasEntityKey)
	reserved := make(map[string]bool)
	created := 0
	for _, c := range m.discoverSeedCandidates(ctx, targetBrands-len(existing)) {
		if len(existing) >= targetBrands {
			break
		}
		if brand, ok := m.createBrandFromCandidate(c, reserved, started); ok {
			existing = append(existing, brand)
			created++
		}
	}
	for len(existing) < targetBrands {
		brand, err := m.createBrand(namer, reserved, started)
		if err != nil {
			var seedErr *contracts.SeedError
			if errors.As(err, &seedErr) {
				seedErr.Requested = targetBrands
				seedErr.Generated = len(existing)
			}
			return contracts.SeedResult{}, err
		}
		existing = append(existing, brand)
		created++
	}

	updated := 0
	for _, brand := range existing[:len(existing)-created] {
		latest := m.store.LatestByMetric(brand.ID)
		m.store.AppendObservations(brand.ID, synthRefreshObservations(m.rng, brand.ID, latest, started))
		updated++
	}

	result := m.scoreBatch(ctx, existing, enrichTopN, started)
	result.Created = created
	result.Updated = updated

	m.log.WithFields(map[string]interface{}{
		"brands":     result.Brands,
		"created":    created,
		"updated":    updated,
		"elapsed_ms": time.Since(started).Milliseconds(),
	}).Info("universe refresh complete")

	m.publish("refresh", result, started)
	return result, nil
}

// scoreBatch enriches the hottest brands, then writes a weekly scorecard
// for everyone.
func (m *Manager) scoreBatch(ctx context.Context, brands []contracts.Brand, enrichTopN int, started time.Time) contracts.SeedResult {
	week := mondayOfWeek(started)

	// Preliminary heat ranking decides which brands earn deeper evidence.
	type heatRank struct {
		brand contracts.Brand
		heat  float64
	}
	ranking := make([]heatRank, 0, len(brands))
	for _, b := range brands {
		ranking = append(ranking, heatRank{
			brand: b,
			heat:  m.engine.HeatScore(latestValues(m.store.LatestByMetric(b.ID))),
		})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		if ranking[i].heat != ranking[j].heat {
			return ranking[i].heat > ranking[j].heat
		}
		return ranking[i].brand.ID < ranking[j].brand.ID
	})

	enriched := make(map[string]bool, enrichTopN)
	for i, hr := range ranking {
		if i >= enrichTopN {
			break
		}
		enriched[hr.brand.ID] = m.enrichBrand(ctx, hr.brand)
	}

	snapshots := 0
	failed := 0
	for _, b := range brands {
		// One brand's scoring failure must not abort the batch.
		if err := m.scoreBrandSafe(ctx, b, enriched[b.ID], week); err != nil {
			m.log.WithError(err).WithField("brand_id", b.ID).Error("scorecard computation failed, skipping brand")
			failed++
			continue
		}
		snapshots++
	}

	return contracts.SeedResult{Brands: m.store.BrandCount(), Snapshots: snapshots, Failed: failed}
}

func (m *Manager) publish(eventType string, result contracts.SeedResult, at time.Time) {
	if m.notifier == nil {
		return
	}
	m.notifier.PublishUniverseEvent(UniverseEvent{
		Type:        eventType,
		Brands:      result.Brands,
		Created:     result.Created,
		Updated:     result.Updated,
		Snapshots:   result.Snapshots,
		GeneratedAt: at.UTC(),
	})
}

type feedRow struct {
	brand contracts.Brand
	card  contracts.Scorecard
}

func sortValue(key contracts.SortKey, row feedRow) float64 {
	switch key {
	case contracts.SortAsymmetry:
		return row.card.AsymmetryIndex
	case contracts.SortRisk:
		return row.card.RiskScore
	case contracts.SortRevenue:
		return row.card.RevenueP50
	case contracts.SortCapitalRequired:
		return row.card.CapitalRequiredMUSD
	default:
		return row.card.HeatScore
	}
}

func matchesSearch(brand contracts.Brand, search string) bool {
	if search == "" {
		return true
	}
	for _, token := range strings.Fields(strings.ToLower(search)) {
		if strings.Contains(strings.ToLower(brand.Name), token) ||
			strings.Contains(strings.ToLower(brand.Category), token) ||
			strings.Contains(strings.ToLower(brand.Region), token) {
			continue
		}
		return false
	}
	return true
}

// Feed returns the current ranking. Ranks are recomputed over the
// filtered set, so rank 1 is always the best match under the sort key.
func (m *Manager) Feed(sortKey contracts.SortKey, search string, limit int) contracts.FeedResponse {
	if limit <= 0 {
		limit = 200
	}

	var rows []feedRow
	seenEntities := make(map[string]bool)
	for _, brand := range m.store.Brands() {
		card, ok := m.store.CurrentScorecard(brand.ID)
		if !ok {
			continue
		}
		if !matchesSearch(brand, search) {
			continue
		}
		key := strings.ToLower(CanonicalDisplayName(brand.Name))
		if seenEntities[key] {
			continue
		}
		seenEntities[key] = true
		rows = append(rows, feedRow{brand: brand, card: card})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		vi, vj := sortValue(sortKey, rows[i]), sortValue(sortKey, rows[j])
		if vi != vj {
			return vi > vj
		}
		if rows[i].card.Confidence != rows[j].card.Confidence {
			return rows[i].card.Confidence > rows[j].card.Confidence
		}
		return rows[i].brand.ID < rows[j].brand.ID
	})

	if len(rows) > limit {
		rows = rows[:limit]
	}

	items := make([]contracts.RankedFeedItem, 0, len(rows))
	for i, row := range rows {
		items = append(items, contracts.RankedFeedItem{
			Rank:                   i + 1,
			BrandID:                row.brand.ID,
			Name:                   CanonicalDisplayName(row.brand.Name),
			Category:               row.brand.Category,
			Region:                 row.brand.Region,
			HeatScore:              row.card.HeatScore,
			RiskScore:              row.card.RiskScore,
			AsymmetryIndex:         row.card.AsymmetryIndex,
			CapitalIntensity:       row.card.CapitalIntensity,
			RevenueP50:             row.card.RevenueP50,
			CapitalRequiredMUSD:    row.card.CapitalRequiredMUSD,
			DeltaHeat:              row.card.DeltaHeat,
			Confidence:             row.card.Confidence,
			DeeperAnalysisRequired: row.card.DeeperAnalysisRequired,
		})
	}

	return contracts.FeedResponse{
		GeneratedAt: m.now().UTC(),
		Sort:        sortKey,
		Items:       items,
	}
}

// Profile assembles the full brand view.
func (m *Manager) Profile(brandID string) (contracts.BrandProfile, error) {
	brand, ok := m.store.Brand(brandID)
	if !ok {
		return contracts.BrandProfile{}, &contracts.NotFoundError{Kind: "brand", ID: brandID}
	}
	card, ok := m.store.CurrentScorecard(brandID)
	if !ok {
		return contracts.BrandProfile{}, &contracts.NotFoundError{Kind: "scorecard", ID: brandID}
	}

	evidence := m.store.Evidence(brandID)
	sort.SliceStable(evidence, func(i, j int) bool { return evidence[i].Reliability > evidence[j].Reliability })
	if len(evidence) > 8 {
		evidence = evidence[:8]
	}

	display := brand
	display.Name = CanonicalDisplayName(brand.Name)
	return m.engine.BuildProfile(display, card, evidence, m.store.Observations(brandID)), nil
}

const defaultTimeseriesWeeks = 12

// Timeseries returns a brand's observation history. A metric name narrows
// the series to that metric over a trailing window of weeks.
func (m *Manager) Timeseries(brandID, metricName string, weeks int) (contracts.TimeSeriesResponse, error) {
	if _, ok := m.store.Brand(brandID); !ok {
		return contracts.TimeSeriesResponse{}, &contracts.NotFoundError{Kind: "brand", ID: brandID}
	}
	points := m.store.Observations(brandID)
	if metricName != "" {
		if weeks <= 0 {
			weeks = defaultTimeseriesWeeks
		}
		points = m.store.MetricWindow(brandID, metricName, time.Duration(weeks)*7*24*time.Hour, m.now())
	}
	return contracts.TimeSeriesResponse{
		BrandID: brandID,
		Points:  points,
	}, nil
}

// Scorecard returns a brand's current snapshot for on-demand consumers.
func (m *Manager) Scorecard(brandID string) (contracts.Scorecard, error) {
	if _, ok := m.store.Brand(brandID); !ok {
		return contracts.Scorecard{}, &contracts.NotFoundError{Kind: "brand", ID: brandID}
	}
	card, ok := m.store.CurrentScorecard(brandID)
	if !ok {
		return contracts.Scorecard{}, &contracts.NotFoundError{Kind: "scorecard", ID: brandID}
	}
	return card, nil
}

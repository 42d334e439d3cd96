package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hellogreencow/burch/internal/contracts"
	"github.com/hellogreencow/burch/pkg/logger"
)

// Store holds the brand universe: identities, scorecard history, the
// append-only signal log, evidence citations and generated-report records.
// It is the single source of truth for everything the feed, profiles and
// reports read from.
//
// Readers take the RWMutex. Reseed and refresh batches additionally hold
// the mutation lock so at most one batch mutates the universe at a time
// while reads keep flowing against the previous state.
type Store struct {
	log *logger.Logger

	mu       sync.RWMutex
	mutation sync.Mutex

	brands    map[string]contracts.Brand
	nameIndex map[string]string // entity key -> brand id

	scorecards   map[string][]contracts.Scorecard // oldest first
	observations map[string][]contracts.SignalObservation
	evidence     map[string][]contracts.EvidenceCitation

	reports []contracts.ReportArtifact
}

func New(log *logger.Logger) *Store {
	return &Store{
		log:          log,
		brands:       make(map[string]contracts.Brand),
		nameIndex:    make(map[string]string),
		scorecards:   make(map[string][]contracts.Scorecard),
		observations: make(map[string][]contracts.SignalObservation),
		evidence:     make(map[string][]contracts.EvidenceCitation),
	}
}

// BeginMutation acquires the single-writer batch lock. Every reseed or
// refresh wraps its whole batch in BeginMutation/EndMutation.
func (s *Store) BeginMutation() { s.mutation.Lock() }

func (s *Store) EndMutation() { s.mutation.Unlock() }

// Reset discards all brands and derived state. Callers must hold the
// mutation lock.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brands = make(map[string]contracts.Brand)
	s.nameIndex = make(map[string]string)
	s.scorecards = make(map[string][]contracts.Scorecard)
	s.observations = make(map[string][]contracts.SignalObservation)
	s.evidence = make(map[string][]contracts.EvidenceCitation)
}

// PutBrand inserts or replaces a brand identity.
func (s *Store) PutBrand(b contracts.Brand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.brands[b.ID]; ok && prev.EntityKey != b.EntityKey {
		delete(s.nameIndex, prev.EntityKey)
	}
	s.brands[b.ID] = b
	s.nameIndex[b.EntityKey] = b.ID
}

func (s *Store) Brand(id string) (contracts.Brand, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.brands[id]
	return b, ok
}

// HasEntityKey reports whether a normalized brand name is already taken.
func (s *Store) HasEntityKey(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nameIndex[key]
	return ok
}

// Brands returns all brand identities sorted by id for stable iteration.
func (s *Store) Brands() []contracts.Brand {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]contracts.Brand, 0, len(s.brands))
	for _, b := range s.brands {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) BrandCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.brands)
}

// AppendObservations adds signal readings to a brand's time series.
func (s *Store) AppendObservations(brandID string, obs []contracts.SignalObservation) {
	if len(obs) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observations[brandID] = append(s.observations[brandID], obs...)
}

// Observations returns a brand's full observation history, oldest first.
func (s *Store) Observations(brandID string) []contracts.SignalObservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.observations[brandID]
	out := make([]contracts.SignalObservation, len(src))
	copy(out, src)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ObservedAt.Before(out[j].ObservedAt) })
	return out
}

// LatestByMetric collapses a brand's observation history to the most
// recent value per metric.
func (s *Store) LatestByMetric(brandID string) map[string]contracts.SignalObservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	latest := make(map[string]contracts.SignalObservation)
	for _, o := range s.observations[brandID] {
		cur, ok := latest[o.Metric]
		if !ok || o.ObservedAt.After(cur.ObservedAt) {
			latest[o.Metric] = o
		}
	}
	return latest
}

// MetricWindow returns a brand's observations for one metric within the
// trailing window, oldest first.
func (s *Store) MetricWindow(brandID, metric string, window time.Duration, now time.Time) []contracts.SignalObservation {
	cutoff := now.Add(-window)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []contracts.SignalObservation
	for _, o := range s.observations[brandID] {
		if o.Metric == metric && !o.ObservedAt.Before(cutoff) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ObservedAt.Before(out[j].ObservedAt) })
	return out
}

// AppendScorecard records a new snapshot as the brand's current scorecard.
func (s *Store) AppendScorecard(card contracts.Scorecard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scorecards[card.BrandID] = append(s.scorecards[card.BrandID], card)
}

// CurrentScorecard returns the most recent snapshot for a brand.
func (s *Store) CurrentScorecard(brandID string) (contracts.Scorecard, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hist := s.scorecards[brandID]
	if len(hist) == 0 {
		return contracts.Scorecard{}, false
	}
	return hist[len(hist)-1], true
}

// PreviousScorecard returns the snapshot before the current one, used for
// heat deltas.
func (s *Store) PreviousScorecard(brandID string) (contracts.Scorecard, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hist := s.scorecards[brandID]
	if len(hist) < 2 {
		return contracts.Scorecard{}, false
	}
	return hist[len(hist)-2], true
}

func (s *Store) ScorecardHistory(brandID string) []contracts.Scorecard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.scorecards[brandID]
	out := make([]contracts.Scorecard, len(src))
	copy(out, src)
	return out
}

// AddEvidence appends citations for a brand, deduplicating by URL and
// keeping at most limit entries (newest win).
func (s *Store) AddEvidence(brandID string, citations []contracts.EvidenceCitation, limit int) {
	if len(citations) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	merged := make([]contracts.EvidenceCitation, 0, len(s.evidence[brandID])+len(citations))
	for _, c := range append(citations, s.evidence[brandID]...) {
		key := strings.ToLower(c.URL)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, c)
	}
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	s.evidence[brandID] = merged
}

func (s *Store) Evidence(brandID string) []contracts.EvidenceCitation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.evidence[brandID]
	out := make([]contracts.EvidenceCitation, len(src))
	copy(out, src)
	return out
}

// RecordReport remembers a generated report artifact.
func (s *Store) RecordReport(a contracts.ReportArtifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, a)
}

func (s *Store) Reports() []contracts.ReportArtifact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]contracts.ReportArtifact, len(s.reports))
	copy(out, s.reports)
	return out
}

package universe

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/hellogreencow/burch/internal/contracts"
)

// NamerConfig controls synthetic brand-name generation. The pools are
// injectable so seeding behavior under exhaustion is testable.
type NamerConfig struct {
	Adjectives  []string
	Nouns       []string
	Qualifiers  []string
	MaxAttempts int
}

const defaultMaxNameAttempts = 24

var defaultAdjectives = []string{
	"Alpine", "Golden", "Wild", "Cedar", "Juniper", "Ember", "Coastal",
	"Nimbus", "Willow", "Harbor", "Summit", "Meadow", "Lunar", "Copper",
	"Sable", "Prairie", "Maple", "Tidal", "Aurora", "Fable", "Birch",
	"Canyon", "Velvet", "Clover", "Drift", "Marble", "Onyx", "Quill",
	"Solstice", "Terra", "Umber", "Verdant", "Zephyr", "Cobalt", "Fjord",
}

var defaultNouns = []string{
	"Supply", "Goods", "Collective", "Works", "Provisions", "Atelier",
	"Botanics", "Roasters", "Apothecary", "Outfitters", "Labs", "Trading",
	"Press", "Forge", "Grove", "Harvest", "Kitchen", "Loft", "Market",
	"Nursery", "Orchard", "Parlor", "Quarry", "Ridge", "Studio", "Thread",
	"Union", "Vault", "Wharf", "Yard", "Cellar", "Depot", "Exchange",
}

var defaultQualifiers = []string{
	"North", "South", "East", "West", "Prime", "Select", "Reserve",
	"Heritage", "Modern", "Original", "Classic", "Signature",
}

// Namer generates unique synthetic brand names against a live-name check.
type Namer struct {
	cfg   NamerConfig
	rng   *rand.Rand
	taken func(entityKey string) bool
}

func NewNamer(cfg NamerConfig, rng *rand.Rand, taken func(entityKey string) bool) *Namer {
	if len(cfg.Adjectives) == 0 {
		cfg.Adjectives = defaultAdjectives
	}
	if len(cfg.Nouns) == 0 {
		cfg.Nouns = defaultNouns
	}
	if len(cfg.Qualifiers) == 0 {
		cfg.Qualifiers = defaultQualifiers
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxNameAttempts
	}
	return &Namer{cfg: cfg, rng: rng, taken: taken}
}

// Next produces one unique brand name. On collision it deterministically
// appends a qualifier and retries, bounded by MaxAttempts, then fails
// with a SeedError.
func (n *Namer) Next(reserved map[string]bool) (name, entityKey string, err error) {
	base := fmt.Sprintf("%s %s",
		n.cfg.Adjectives[n.rng.Intn(len(n.cfg.Adjectives))],
		n.cfg.Nouns[n.rng.Intn(len(n.cfg.Nouns))])

	candidate := base
	for attempt := 0; attempt < n.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			qualifier := n.cfg.Qualifiers[(attempt-1)%len(n.cfg.Qualifiers)]
			candidate = base + " " + qualifier
			if attempt > len(n.cfg.Qualifiers) {
				candidate = fmt.Sprintf("%s %s %d", base, qualifier, attempt)
			}
		}
		key := EntityKeyFromName(candidate)
		if key == "" {
			continue
		}
		if n.taken(key) || reserved[key] {
			continue
		}
		return candidate, key, nil
	}

	return "", "", &contracts.SeedError{
		Reason: fmt.Sprintf("name pool exhausted after %d attempts for base %q", n.cfg.MaxAttempts, strings.TrimSpace(base)),
	}
}

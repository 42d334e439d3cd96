package universe

import (
	"regexp"
	"strings"
)

var (
	trailingVersionRe = regexp.MustCompile(`\s+\d+$`)
	nonAlnumRe        = regexp.MustCompile(`[^a-z0-9]+`)
)

// Boilerplate tokens that show up in titles and snippets and create
// duplicate entities.
var dropTokens = map[string]bool{
	"the": true, "official": true, "site": true, "store": true, "shop": true,
	"online": true, "brand": true, "inc": true, "llc": true, "ltd": true,
	"co": true, "company": true, "corp": true, "corporation": true,
}

// CanonicalDisplayName is the human-facing cleanup: normalizes whitespace
// and strips a trailing version number.
func CanonicalDisplayName(name string) string {
	normalized := strings.Join(strings.Fields(name), " ")
	canonical := trailingVersionRe.ReplaceAllString(normalized, "")
	if canonical == "" {
		return normalized
	}
	return canonical
}

// EntityKeyFromName aggressively normalizes a brand name for dedupe.
// Intended for internal grouping only, not for display.
func EntityKeyFromName(name string) string {
	cleaned := strings.ToLower(CanonicalDisplayName(name))
	cleaned = strings.NewReplacer("™", "", "®", "").Replace(cleaned)
	cleaned = nonAlnumRe.ReplaceAllString(cleaned, " ")
	var tokens []string
	for _, t := range strings.Fields(cleaned) {
		if !dropTokens[t] {
			tokens = append(tokens, t)
		}
	}
	key := strings.Join(tokens, " ")
	if len(key) > 140 {
		key = key[:140]
	}
	return strings.TrimSpace(key)
}

package normalisers

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Key resolution tiers, in priority order. First hit wins.
const (
	// TierExact matches an alias against the available keys verbatim.
	TierExact = iota

	// TierSubstring matches case-insensitively when the alias contains a
	// key or a key contains the alias.
	TierSubstring

	// TierFuzzy accepts the most similar key at or above SimilarityFloor.
	TierFuzzy
)

// SimilarityFloor is the minimum string similarity for a fuzzy key match.
// Candidates below the floor are rejected rather than guessed at.
const SimilarityFloor = 0.7

// ResolveKey finds the source key for a target field given its ranked
// alias list. Returns the matched key and true, or "" and false when no
// tier produces a hit.
func ResolveKey(fields map[string]any, aliases []string) (string, bool) {
	// Tier 1: exact match, in alias priority order.
	for _, alias := range aliases {
		if _, ok := fields[alias]; ok {
			return alias, true
		}
	}

	// Available keys sorted for deterministic tie-breaking.
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Tier 2: case-insensitive substring match.
	for _, alias := range aliases {
		la := strings.ToLower(alias)
		for _, k := range keys {
			lk := strings.ToLower(k)
			if strings.Contains(lk, la) || strings.Contains(la, lk) {
				return k, true
			}
		}
	}

	// Tier 3: fuzzy similarity with a floor.
	bestKey := ""
	bestScore := 0.0
	for _, alias := range aliases {
		for _, k := range keys {
			if s := similarity(alias, k); s > bestScore {
				bestScore = s
				bestKey = k
			}
		}
	}
	if bestScore >= SimilarityFloor {
		return bestKey, true
	}

	return "", false
}

// ResolveValue is ResolveKey followed by the lookup. Nil values resolve
// to not-found so fallback aliases still get a chance.
func ResolveValue(fields map[string]any, aliases []string) (any, bool) {
	key, ok := ResolveKey(fields, aliases)
	if !ok {
		return nil, false
	}
	v := fields[key]
	if v == nil {
		return nil, false
	}
	return v, true
}

// ResolveString resolves a field and renders it as a trimmed string.
func ResolveString(fields map[string]any, aliases []string) string {
	v, ok := ResolveValue(fields, aliases)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// similarity is a normalised Levenshtein ratio over runes (1.0 = equal).
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la := len([]rune(a))
	lb := len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(strings.ToLower(a), strings.ToLower(b))
	return 1.0 - float64(dist)/float64(longest)
}

// internal/matching/normalize.go
package matching

import (
	"sort"
	"strings"
)

// NormalizeProfile converts a possibly-sparse raw profile into the canonical
// UserProfile every downstream consumer sees: missing fields become empty
// sets, entries are trimmed, lowercased and deduplicated, and sets are sorted
// for deterministic comparison. Absence of data is valid input; this never
// fails.
func NormalizeProfile(raw RawProfile) UserProfile {
	return UserProfile{
		Skills:       normalizeSet(raw.Skills),
		Preferences:  normalizeSet(raw.Preferences),
		Availability: normalizeSet(raw.Availability),
		Location:     normalizeToken(raw.Location),
	}
}

// normalizeSet canonicalizes a tag set: trim, lowercase, drop empties, dedupe,
// sort. Always returns a non-nil slice.
func normalizeSet(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		t := normalizeToken(v)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func normalizeToken(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

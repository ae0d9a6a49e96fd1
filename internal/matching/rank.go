// internal/matching/rank.go
package matching

import (
	"sort"

	"edumatch-workers/internal/common/errors"
)

// DefaultLimit is the number of results returned when the caller does not ask
// for a specific count and no configured default applies.
const DefaultLimit = 5

// ResolveLimit maps a requested result count onto the configured bounds: zero
// means "use the configured default", anything above MaxLimit is clamped down
// to it, and negative values are a contract violation.
func (p Params) ResolveLimit(limit int) (int, error) {
	if limit == 0 {
		limit = p.DefaultLimit
		if limit == 0 {
			limit = DefaultLimit
		}
	}
	if limit < 1 {
		return 0, errors.NewInvalidLimitError(limit)
	}
	if p.MaxLimit > 0 && limit > p.MaxLimit {
		limit = p.MaxLimit
	}
	return limit, nil
}

// Rank scores every candidate against the profile, drops zero scores, sorts
// descending and truncates to limit. Ties keep input order (stable sort) so
// results are deterministic. An empty candidate list or an all-zero scoring
// round yields an empty result, not an error; only contract violations
// (limit < 1, structurally invalid activity) do.
func Rank(profile UserProfile, activities []Activity, limit int, params Params) ([]MatchResult, error) {
	if limit < 1 {
		return nil, errors.NewInvalidLimitError(limit)
	}

	for _, a := range activities {
		if err := ValidateActivity(a); err != nil {
			return nil, err
		}
	}

	results := make([]MatchResult, 0, len(activities))
	for _, a := range activities {
		score, reasons := Score(profile, a, params)
		if score <= 0 {
			continue
		}
		results = append(results, MatchResult{
			ActivityID: a.ID,
			Name:       a.Name,
			Score:      score,
			Reasons:    reasons,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// internal/matching/score.go
package matching

import "fmt"

// Contribution is one criterion's part of a pair score, in evaluation order.
type Contribution struct {
	Criterion string  `json:"criterion"`
	Weight    float64 `json:"weight"`
	Reason    string  `json:"reason"`
}

// Score computes the match score for one (profile, activity) pair together
// with the human-readable reasons, one per contributing criterion, in
// evaluation order. Deterministic: fixed inputs produce identical output.
func Score(profile UserProfile, activity Activity, params Params) (float64, []string) {
	score, contribs := ScoreDetailed(profile, activity, params)
	reasons := make([]string, 0, len(contribs))
	for _, c := range contribs {
		reasons = append(reasons, c.Reason)
	}
	return score, reasons
}

// ScoreDetailed is Score with the per-criterion breakdown exposed, used by
// the score-activity worker to report match factors.
func ScoreDetailed(profile UserProfile, activity Activity, params Params) (float64, []Contribution) {
	w := params.Weights
	skillCap := params.SkillCap
	if skillCap < 1 {
		skillCap = 1
	}

	var sum float64
	var contribs []Contribution

	// Skill overlap, capped to limit diminishing returns. Every genuinely
	// matched skill is reported even when the cap limits its contribution.
	matched := matchedSkills(profile, activity)
	if len(matched) > 0 {
		counted := len(matched)
		if counted > skillCap {
			counted = skillCap
		}
		sum += float64(counted) * w.Skill
		for _, s := range matched {
			contribs = append(contribs, Contribution{
				Criterion: "skill",
				Weight:    w.Skill,
				Reason:    fmt.Sprintf("matches your skill %q", s),
			})
		}
	}

	// Category preference
	if category := normalizeToken(activity.Category); category != "" && containsToken(profile.Preferences, category) {
		sum += w.Category
		contribs = append(contribs, Contribution{
			Criterion: "category",
			Weight:    w.Category,
			Reason:    fmt.Sprintf("in your preferred category %q", category),
		})
	}

	// Availability presence check. The catalog carries no per-slot schedule,
	// so a declared availability is treated as a baseline compatibility signal.
	if len(profile.Availability) > 0 {
		sum += w.Availability
		contribs = append(contribs, Contribution{
			Criterion: "availability",
			Weight:    w.Availability,
			Reason:    "fits your declared availability",
		})
	}

	// Duration tiers
	switch {
	case activity.DurationMinutes <= 90:
		sum += w.DurationShort
		contribs = append(contribs, Contribution{
			Criterion: "duration",
			Weight:    w.DurationShort,
			Reason:    fmt.Sprintf("short session (%d min)", activity.DurationMinutes),
		})
	case activity.DurationMinutes <= 150:
		sum += w.DurationMedium
		contribs = append(contribs, Contribution{
			Criterion: "duration",
			Weight:    w.DurationMedium,
			Reason:    fmt.Sprintf("medium-length session (%d min)", activity.DurationMinutes),
		})
	}

	// Safety bonus steers novice profiles toward low-risk activities.
	if len(profile.Skills) < 3 && activity.SafetyLevel <= 2 {
		sum += w.SafetyBeginner
		contribs = append(contribs, Contribution{
			Criterion: "safety",
			Weight:    w.SafetyBeginner,
			Reason:    fmt.Sprintf("beginner-friendly (safety level %d)", activity.SafetyLevel),
		})
	}

	// Featured bonus
	if activity.IsFeatured {
		sum += w.Featured
		contribs = append(contribs, Contribution{
			Criterion: "featured",
			Weight:    w.Featured,
			Reason:    "featured activity",
		})
	}

	max := params.maxAttainable()
	if max <= 0 {
		return 0, nil
	}

	score := sum / max
	if score > 1 {
		score = 1
	}
	return score, contribs
}

// matchedSkills returns the activity skill tags present in the profile skill
// set, in the activity's tag order, deduplicated.
func matchedSkills(profile UserProfile, activity Activity) []string {
	if len(profile.Skills) == 0 || len(activity.SkillTags) == 0 {
		return nil
	}

	have := make(map[string]bool, len(profile.Skills))
	for _, s := range profile.Skills {
		have[s] = true
	}

	var matched []string
	seen := make(map[string]bool, len(activity.SkillTags))
	for _, tag := range activity.SkillTags {
		t := normalizeToken(tag)
		if t == "" || seen[t] || !have[t] {
			continue
		}
		seen[t] = true
		matched = append(matched, t)
	}
	return matched
}

func containsToken(set []string, token string) bool {
	for _, s := range set {
		if s == token {
			return true
		}
	}
	return false
}

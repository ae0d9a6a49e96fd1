// internal/matching/types.go
package matching

import (
	"fmt"

	"edumatch-workers/internal/common/config"
	"edumatch-workers/internal/common/errors"
)

// RawProfile is the possibly-sparse profile shape supplied by callers. Any
// subset of fields may be missing; missing and empty are interchangeable.
type RawProfile struct {
	Skills       []string `json:"skills,omitempty"`
	Preferences  []string `json:"preferences,omitempty"`
	Availability []string `json:"availability,omitempty"`
	Location     string   `json:"location,omitempty"`
}

// UserProfile is the canonical comparison structure produced by
// NormalizeProfile: sets are deduplicated, trimmed, lowercased and sorted,
// never nil.
type UserProfile struct {
	Skills       []string `json:"skills"`
	Preferences  []string `json:"preferences"`
	Availability []string `json:"availability"`
	Location     string   `json:"location,omitempty"`
}

// Activity is one candidate supplied per invocation. Read-only from the
// engine's perspective.
type Activity struct {
	ID              string   `json:"id"`
	Name            string   `json:"name,omitempty"`
	Category        string   `json:"category"`
	SkillTags       []string `json:"skillTags,omitempty"`
	DurationMinutes int      `json:"durationMinutes"`
	SafetyLevel     int      `json:"safetyLevel"`
	IsFeatured      bool     `json:"isFeatured"`
	Seasonality     []string `json:"seasonality,omitempty"`
}

// MatchResult is a value object created fresh per ranking call.
type MatchResult struct {
	ActivityID string   `json:"activityId"`
	Name       string   `json:"name,omitempty"`
	Score      float64  `json:"score"`
	Reasons    []string `json:"reasons"`
	Confidence float64  `json:"confidence,omitempty"`
}

// Weights holds the per-criterion contributions of the scoring function.
// They are policy, not structure: callers load them from configuration.
type Weights struct {
	Skill          float64
	Category       float64
	Availability   float64
	DurationShort  float64
	DurationMedium float64
	SafetyBeginner float64
	Featured       float64
}

// Params bundles the weights with the skill-overlap cap and the ranking
// limit bounds.
type Params struct {
	Weights      Weights
	SkillCap     int
	DefaultLimit int
	MaxLimit     int
}

// DefaultParams mirrors the configuration defaults. The default weights sum
// (with the skill term at its cap) to 1.0, so normalized scores equal the raw
// weighted sum.
func DefaultParams() Params {
	return Params{
		Weights: Weights{
			Skill:          0.15,
			Category:       0.20,
			Availability:   0.10,
			DurationShort:  0.10,
			DurationMedium: 0.05,
			SafetyBeginner: 0.10,
			Featured:       0.05,
		},
		SkillCap:     3,
		DefaultLimit: DefaultLimit,
		MaxLimit:     50,
	}
}

// ParamsFromConfig maps the externally configured weights onto engine params.
func ParamsFromConfig(cfg config.MatchingConfig) Params {
	return Params{
		Weights: Weights{
			Skill:          cfg.Weights.Skill,
			Category:       cfg.Weights.Category,
			Availability:   cfg.Weights.Availability,
			DurationShort:  cfg.Weights.DurationShort,
			DurationMedium: cfg.Weights.DurationMedium,
			SafetyBeginner: cfg.Weights.SafetyBeginner,
			Featured:       cfg.Weights.Featured,
		},
		SkillCap:     cfg.SkillCap,
		DefaultLimit: cfg.DefaultLimit,
		MaxLimit:     cfg.MaxLimit,
	}
}

// maxAttainable is the largest weighted sum any activity can reach: skill
// term at its cap, the short duration tier, and every flat bonus. Used as the
// normalization divisor so scores land in [0, 1] while preserving order.
func (p Params) maxAttainable() float64 {
	w := p.Weights
	cap := p.SkillCap
	if cap < 1 {
		cap = 1
	}
	return w.Skill*float64(cap) + w.Category + w.Availability + w.DurationShort + w.SafetyBeginner + w.Featured
}

// ValidateActivity rejects structurally invalid candidates. Sparse optional
// fields are fine; a missing id, non-positive duration or out-of-range safety
// level is a caller contract violation.
func ValidateActivity(a Activity) error {
	if a.ID == "" {
		return errors.NewInvalidActivityError(a.ID, "activity id is required")
	}
	if a.DurationMinutes <= 0 {
		return errors.NewInvalidActivityError(a.ID, fmt.Sprintf("durationMinutes must be positive, got %d", a.DurationMinutes))
	}
	if a.SafetyLevel < 1 || a.SafetyLevel > 5 {
		return errors.NewInvalidActivityError(a.ID, fmt.Sprintf("safetyLevel must be in 1..5, got %d", a.SafetyLevel))
	}
	return nil
}

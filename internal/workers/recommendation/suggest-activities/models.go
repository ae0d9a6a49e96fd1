// internal/workers/recommendation/suggest-activities/models.go
package suggestactivities

import (
	"edumatch-workers/internal/catalog"
	"edumatch-workers/internal/matching"
)

// Input accepts either an inline profile or a userId to resolve one, and
// either an inline candidate list or a catalog query. Limit zero means the
// engine default.
type Input struct {
	UserID     string               `json:"userId,omitempty"`
	Profile    *matching.RawProfile `json:"profile,omitempty"`
	Activities []matching.Activity  `json:"activities,omitempty"`
	Query      *catalog.Query       `json:"query,omitempty"`
	Limit      int                  `json:"limit,omitempty"`
}

type Output struct {
	RequestID       string                 `json:"requestId"`
	Source          string                 `json:"source"`
	Recommendations []matching.MatchResult `json:"recommendations"`
}

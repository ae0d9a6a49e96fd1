// internal/workers/recommendation/rank-activities/models.go
package rankactivities

import "edumatch-workers/internal/matching"

type Input struct {
	Profile    matching.RawProfile `json:"profile"`
	Activities []matching.Activity `json:"activities"`
	Limit      int                 `json:"limit,omitempty"`
}

type Output struct {
	Results []matching.MatchResult `json:"results"`
}

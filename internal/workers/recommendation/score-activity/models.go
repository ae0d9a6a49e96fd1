// internal/workers/recommendation/score-activity/models.go
package scoreactivity

import "edumatch-workers/internal/matching"

type Input struct {
	UserID   string               `json:"userId,omitempty"`
	Profile  *matching.RawProfile `json:"profile,omitempty"`
	Activity matching.Activity    `json:"activity"`
}

type Output struct {
	ActivityID   string                  `json:"activityId"`
	Score        float64                 `json:"score"`
	Reasons      []string                `json:"reasons"`
	MatchFactors []matching.Contribution `json:"matchFactors"`
}

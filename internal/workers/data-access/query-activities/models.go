// internal/workers/data-access/query-activities/models.go
package queryactivities

import (
	"edumatch-workers/internal/catalog"
	"edumatch-workers/internal/matching"
)

type Input struct {
	Query catalog.Query `json:"query"`
}

type Output struct {
	Activities []matching.Activity `json:"activities"`
	Count      int                 `json:"count"`
}

// internal/catalog/catalog.go
package catalog

import (
	"context"

	"edumatch-workers/internal/matching"
)

// Query narrows the candidate set before scoring. Zero values mean "no
// filter".
type Query struct {
	Category     string `json:"category,omitempty"`
	Season       string `json:"season,omitempty"`
	MaxDuration  int    `json:"maxDuration,omitempty"`
	FeaturedOnly bool   `json:"featuredOnly,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

// Store is the candidate source behind the recommendation workers. Postgres
// is the primary implementation; elasticsearch serves text-heavy deployments
// and the file store serves tests and database-free installs.
type Store interface {
	Find(ctx context.Context, q Query) ([]matching.Activity, error)
}

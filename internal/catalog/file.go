// internal/catalog/file.go
package catalog

import (
	"context"

	"edumatch-workers/internal/matching"
	"edumatch-workers/pkg/registry"
)

// FileStore serves a registry file loaded at startup. It backs local
// development and installs that curate the catalog as JSON.
type FileStore struct {
	activities []matching.Activity
}

func NewFileStore(path string) (*FileStore, error) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return nil, err
	}

	activities := make([]matching.Activity, 0, len(reg.Activities))
	for _, e := range reg.Activities {
		if !e.Active {
			continue
		}
		activities = append(activities, matching.Activity{
			ID:              e.ID,
			Name:            e.DisplayName,
			Category:        e.Category,
			SkillTags:       e.SkillTags,
			DurationMinutes: e.DurationMinutes,
			SafetyLevel:     e.SafetyLevel,
			IsFeatured:      e.IsFeatured,
			Seasonality:     e.Seasonality,
		})
	}
	return &FileStore{activities: activities}, nil
}

func (s *FileStore) Find(_ context.Context, q Query) ([]matching.Activity, error) {
	results := []matching.Activity{}
	for _, a := range s.activities {
		if q.Category != "" && a.Category != q.Category {
			continue
		}
		if q.Season != "" && !contains(a.Seasonality, q.Season) {
			continue
		}
		if q.MaxDuration > 0 && a.DurationMinutes > q.MaxDuration {
			continue
		}
		if q.FeaturedOnly && !a.IsFeatured {
			continue
		}
		results = append(results, a)
		if q.Limit > 0 && len(results) == q.Limit {
			break
		}
	}
	return results, nil
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

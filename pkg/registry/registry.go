// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate catches curation mistakes early, before entries reach the engine.
func (r *ActivityRegistry) Validate() error {
	seen := make(map[string]bool, len(r.Activities))
	for i, e := range r.Activities {
		if e.ID == "" {
			return fmt.Errorf("activity %d: missing id", i)
		}
		if seen[e.ID] {
			return fmt.Errorf("activity %q: duplicate id", e.ID)
		}
		seen[e.ID] = true
		if e.DurationMinutes <= 0 {
			return fmt.Errorf("activity %q: durationMinutes must be positive", e.ID)
		}
		if e.SafetyLevel < 1 || e.SafetyLevel > 5 {
			return fmt.Errorf("activity %q: safetyLevel %d outside 1..5", e.ID, e.SafetyLevel)
		}
	}
	return nil
}

// pkg/registry/schema.go
package registry

// ActivityRegistry is the on-disk catalog format used when the worker runs
// without a database, and by ops tooling that curates the catalog by hand.
type ActivityRegistry struct {
	Version     string  `json:"version"`
	LastUpdated string  `json:"lastUpdated"`
	Activities  []Entry `json:"activities"`
}

type Entry struct {
	ID              string   `json:"id"`
	DisplayName     string   `json:"displayName"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	SkillTags       []string `json:"skillTags"`
	DurationMinutes int      `json:"durationMinutes"`
	SafetyLevel     int      `json:"safetyLevel"`
	IsFeatured      bool     `json:"isFeatured"`
	Seasonality     []string `json:"seasonality"`
	Active          bool     `json:"active"`
	Tags            []string `json:"tags"`
}

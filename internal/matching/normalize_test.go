// internal/matching/normalize_test.go
package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeProfile_Canonicalization(t *testing.T) {
	tests := []struct {
		name     string
		raw      RawProfile
		expected UserProfile
	}{
		{
			name: "trims, lowercases, dedupes and sorts",
			raw: RawProfile{
				Skills:       []string{"  Pottery ", "pottery", "SWIMMING"},
				Preferences:  []string{"Arts", "  arts", "STEM"},
				Availability: []string{"Weekends", "weekends"},
				Location:     "  Austin ",
			},
			expected: UserProfile{
				Skills:       []string{"pottery", "swimming"},
				Preferences:  []string{"arts", "stem"},
				Availability: []string{"weekends"},
				Location:     "austin",
			},
		},
		{
			name: "empty raw profile yields empty sets, not nil",
			raw:  RawProfile{},
			expected: UserProfile{
				Skills:       []string{},
				Preferences:  []string{},
				Availability: []string{},
			},
		},
		{
			name: "whitespace-only entries are dropped",
			raw: RawProfile{
				Skills: []string{"   ", "", "coding"},
			},
			expected: UserProfile{
				Skills:       []string{"coding"},
				Preferences:  []string{},
				Availability: []string{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeProfile(tt.raw)
			assert.Equal(t, tt.expected, got)
			assert.NotNil(t, got.Skills)
			assert.NotNil(t, got.Preferences)
			assert.NotNil(t, got.Availability)
		})
	}
}

func TestNormalizeProfile_Deterministic(t *testing.T) {
	raw := RawProfile{
		Skills:      []string{"z", "a", "M", "a"},
		Preferences: []string{"outdoors", "Arts"},
	}

	first := NormalizeProfile(raw)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, NormalizeProfile(raw))
	}
	assert.Equal(t, []string{"a", "m", "z"}, first.Skills)
}

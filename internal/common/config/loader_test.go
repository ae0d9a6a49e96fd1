// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
app:
  name: edumatch-workers
camunda:
  broker_address: "localhost:26500"
database:
  postgres:
    host: localhost
    database: edumatch
    user: app
  redis:
    address: "localhost:6379"
genai:
  enabled: false
workers:
  suggest-activities:
    enabled: true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Matching.SkillCap)
	assert.Equal(t, 5, cfg.Matching.DefaultLimit)
	assert.Equal(t, 50, cfg.Matching.MaxLimit)
	assert.InDelta(t, 0.15, cfg.Matching.Weights.Skill, 1e-9)
	assert.InDelta(t, 0.20, cfg.Matching.Weights.Category, 1e-9)
	assert.InDelta(t, 0.05, cfg.Matching.Weights.Featured, 1e-9)

	assert.Equal(t, 5*time.Second, cfg.GenAI.GetTimeout())
	assert.Equal(t, 1, cfg.GenAI.MaxRetries)

	assert.Equal(t, "postgres", cfg.Catalog.Source)
	assert.Equal(t, 5*time.Minute, cfg.Catalog.GetCacheTTL())

	worker := cfg.Workers["suggest-activities"]
	assert.True(t, worker.Enabled)
	assert.Equal(t, 5, worker.MaxJobsActive)
	assert.Equal(t, 30000, worker.Timeout)
}

func TestLoadFromFile_ZeroWeightIsNotReplaced(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalYAML+`
matching:
  weights:
    featured: 0.0
    category: 0.30
`))
	require.NoError(t, err)

	// An explicit zero disables the criterion; only absent keys get defaults.
	assert.InDelta(t, 0.0, cfg.Matching.Weights.Featured, 1e-9)
	assert.InDelta(t, 0.30, cfg.Matching.Weights.Category, 1e-9)
	assert.InDelta(t, 0.15, cfg.Matching.Weights.Skill, 1e-9)
	assert.Equal(t, 3, cfg.Matching.SkillCap)
}

func TestLoadFromFile_ValidatesRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing broker", `
database:
  postgres:
    host: localhost
    database: edumatch
    user: app
  redis:
    address: "localhost:6379"
`},
		{"genai enabled without base url", `
camunda:
  broker_address: "localhost:26500"
database:
  postgres:
    host: localhost
    database: edumatch
    user: app
  redis:
    address: "localhost:6379"
genai:
  enabled: true
`},
		{"file catalog without registry path", `
camunda:
  broker_address: "localhost:26500"
database:
  postgres:
    host: localhost
    database: edumatch
    user: app
  redis:
    address: "localhost:6379"
catalog:
  source: file
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestIsWorkerEnabled(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"rank-activities": {Enabled: false},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "rank-activities"))
	// Unknown workers default to enabled.
	assert.True(t, IsWorkerEnabled(cfg, "suggest-activities"))
}

func TestGetWorkerConfig(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"rank-activities": {Enabled: true, MaxJobsActive: 12, Timeout: 10000},
	}}

	configured := GetWorkerConfig(cfg, "rank-activities")
	assert.Equal(t, 12, configured.MaxJobsActive)
	assert.Equal(t, 10000, configured.Timeout)

	// Unconfigured workers get an enabled default block.
	fallback := GetWorkerConfig(cfg, "score-activity")
	assert.True(t, fallback.Enabled)
	assert.Equal(t, 5, fallback.MaxJobsActive)
	assert.Equal(t, 30000, fallback.Timeout)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}

// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Database DatabaseConfig          `mapstructure:"database"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	Matching MatchingConfig          `mapstructure:"matching"`
	GenAI    GenAIConfig             `mapstructure:"genai"`
	Catalog  CatalogConfig           `mapstructure:"catalog"`
	Tracing  TracingConfig           `mapstructure:"tracing"`
	Logging  LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	Index      string   `mapstructure:"index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Matching Engine Configuration ---

// MatchingConfig holds the scoring weights and ranking bounds for the local
// matching engine. Weights are a policy choice, so they live in configuration
// rather than code.
type MatchingConfig struct {
	Weights      WeightsConfig `mapstructure:"weights"`
	SkillCap     int           `mapstructure:"skill_cap"`
	DefaultLimit int           `mapstructure:"default_limit"`
	MaxLimit     int           `mapstructure:"max_limit"`
}

// WeightsConfig holds the per-criterion contributions of the scoring function.
type WeightsConfig struct {
	Skill          float64 `mapstructure:"skill"`
	Category       float64 `mapstructure:"category"`
	Availability   float64 `mapstructure:"availability"`
	DurationShort  float64 `mapstructure:"duration_short"`
	DurationMedium float64 `mapstructure:"duration_medium"`
	SafetyBeginner float64 `mapstructure:"safety_beginner"`
	Featured       float64 `mapstructure:"featured"`
}

// GenAIConfig holds settings for the external suggestion provider.
type GenAIConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	MaxRetries int    `mapstructure:"max_retries"`
}

// GetTimeout returns the provider timeout as a duration.
func (g GenAIConfig) GetTimeout() time.Duration {
	if g.Timeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(g.Timeout) * time.Millisecond
}

// CatalogConfig holds settings for the activity catalog store.
type CatalogConfig struct {
	RegistryPath string `mapstructure:"registry_path"` // JSON seed catalog
	CacheTTL     int    `mapstructure:"cache_ttl"`     // seconds
	Source       string `mapstructure:"source"`        // postgres | elasticsearch | file
}

// GetCacheTTL returns the snapshot cache TTL as a duration.
func (c CatalogConfig) GetCacheTTL() time.Duration {
	if c.CacheTTL <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.CacheTTL) * time.Second
}

// TracingConfig holds distributed tracing settings. An empty collector
// endpoint disables exporting.
type TracingConfig struct {
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

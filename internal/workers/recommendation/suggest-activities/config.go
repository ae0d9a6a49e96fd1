// internal/workers/recommendation/suggest-activities/config.go
package suggestactivities

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}

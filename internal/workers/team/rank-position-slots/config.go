// internal/workers/team/rank-position-slots/config.go
package rankpositionslots

import "time"

type Config struct {
	// MaxItems caps the ranked id list; zero keeps every available slot.
	MaxItems      int
	SlowThreshold time.Duration
	Timeout       time.Duration
}

func LoadConfig() *Config {
	return &Config{
		MaxItems:      0,
		SlowThreshold: 500 * time.Millisecond,
		Timeout:       30 * time.Second,
	}
}

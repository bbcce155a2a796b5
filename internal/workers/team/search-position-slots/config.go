// internal/workers/team/search-position-slots/config.go
package searchpositionslots

import "time"

type Config struct {
	Index           string
	DefaultPageSize int
	MaxPageSize     int
	Timeout         time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Index:           "position_slots",
		DefaultPageSize: 20,
		MaxPageSize:     100,
		Timeout:         30 * time.Second,
	}
}

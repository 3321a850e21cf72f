package config

import "time"

// DefaultConfig returns sensible defaults for all configuration.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
	}
}

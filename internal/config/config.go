package config

import (
	"errors"
	"strings"
	"time"
)

// Config represents the complete bbctl configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	HTTP   HTTPConfig   `toml:"http"`
}

// Validate checks that all config values are valid.
// Returns an error describing the first invalid value found.
func (c Config) Validate() error {
	if c.HTTP.Timeout < 0 {
		return errors.New("http.timeout cannot be negative")
	}
	if c.Server.URL != "" && !strings.HasPrefix(c.Server.URL, "https://") {
		return errors.New("server.url must be https://<servername>")
	}
	return nil
}

// ServerConfig identifies the Bitbucket Server instance and repository.
// Credentials are never read from config files; they come from the
// environment or the system keyring.
type ServerConfig struct {
	URL        string `toml:"url"`        // e.g., "https://bitbucket.example.com"
	Project    string `toml:"project"`    // project key, usually 2-4 letters
	Repository string `toml:"repository"` // repository slug, without ".git"
}

// HTTPConfig configures outgoing requests.
type HTTPConfig struct {
	Timeout time.Duration `toml:"timeout"` // per-request timeout (e.g., "30s")
}

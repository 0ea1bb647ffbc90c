// Package config handles configuration for the CLI client,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the docvault CLI.
//
// Fields:
//   - ServerAddr: base URL of the backend HTTP API.
//   - AccessToken: bearer token for owner routes.
//   - UserID: the owner identity; also the input of key derivation, so two
//     configs with different UserID values cannot read each other's vaults.
//   - RequestTimeout: per-request timeout for API calls (blob transfers use
//     the caller's context instead).
type Config struct {
	ServerAddr     string
	AccessToken    string
	UserID         string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerAddr = "http://127.0.0.1:8080"
	c.RequestTimeout = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

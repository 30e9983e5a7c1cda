package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the keygate CLI.
//
// Fields:
//   - ServerURL: base URL of the keygate HTTP API.
//   - TokenFile: where the access token is kept between runs.
//   - RequestTimeout: per-request deadline for API calls.
type Config struct {
	ServerURL      string
	TokenFile      string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.TokenFile = defaultTokenFile()
	c.RequestTimeout = 10 * time.Second
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".keygate_token"
	}
	return filepath.Join(dir, "keygate", "token")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

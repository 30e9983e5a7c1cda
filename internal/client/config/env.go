package config

import "os"

// parseEnv reads KEYGATE_SERVER_URL and KEYGATE_TOKEN_FILE.
func parseEnv(cfg *Config) {
	if v := os.Getenv("KEYGATE_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("KEYGATE_TOKEN_FILE"); v != "" {
		cfg.TokenFile = v
	}
}

package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/keygate/internal/flagx"
	"github.com/dmitrijs2005/keygate/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// RequestTimeout accepts "3s" style strings or integer nanoseconds.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	TokenFile      string         `json:"token_file"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

// parseJson overlays Config with values from the file named by -c/-config.
// Fields missing from the file keep their current values. Panics on read or
// unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.TokenFile != "" {
		cfg.TokenFile = jc.TokenFile
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}

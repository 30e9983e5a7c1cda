package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/keygate/internal/flagx"
	"github.com/dmitrijs2005/keygate/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration file.
// Durations accept "30m" style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AdminSecret                 string         `json:"admin_secret"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	BcryptCost                  int            `json:"bcrypt_cost"`
	LiveAdminCheck              *bool          `json:"live_admin_check"`
	CORSOrigins                 []string       `json:"cors_origins"`
	LogLevel                    string         `json:"log_level"`
	ShutdownTimeout             timex.Duration `json:"shutdown_timeout"`
}

// parseJson overlays values from the file named by -c/-config. Fields that
// are absent from the file keep their current value. An unreadable file or
// invalid JSON panics, as a misconfigured server must not start.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.AdminSecret, c.AdminSecret)
	setString(&config.LogLevel, c.LogLevel)

	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.ShutdownTimeout.Duration > 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.LiveAdminCheck != nil {
		config.LiveAdminCheck = *c.LiveAdminCheck
	}
	if c.CORSOrigins != nil {
		config.CORSOrigins = c.CORSOrigins
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

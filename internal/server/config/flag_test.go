package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		start       *Config
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-d", "db", "-s", "secret", "-k", "admin",
				"-t", "5", "-b", "4", "-l", "debug",
			},
			start: &Config{},
			expected: &Config{
				EndpointAddrHTTP:            "127.0.0.1:9090",
				DatabaseDSN:                 "db",
				SecretKey:                   "secret",
				AdminSecret:                 "admin",
				AccessTokenValidityDuration: 5 * time.Minute,
				BcryptCost:                  4,
				LogLevel:                    "debug",
			},
		},
		{
			name:  "no -t keeps sub-minute duration",
			args:  []string{"cmd", "-a", ":1"},
			start: &Config{AccessTokenValidityDuration: 90 * time.Second},
			expected: &Config{
				EndpointAddrHTTP:            ":1",
				AccessTokenValidityDuration: 90 * time.Second,
			},
		},
		{
			name:        "bad int panics",
			args:        []string{"cmd", "-t", "soon"},
			start:       &Config{},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := tt.start

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}

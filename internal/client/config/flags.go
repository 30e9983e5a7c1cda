package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/keygate/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string           base URL of the server
//	-token-file string  token file path
//	-timeout int        request timeout in seconds
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-token-file", "-timeout"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the keygate server")
	fs.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "file that keeps the access token")
	timeout := fs.Int("timeout", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "timeout" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
}

// Package config loads settings for the keygate CLI client: defaults, an
// optional JSON file (-c/-config), KEYGATE_* environment variables and
// command-line flags, later sources winning.
package config

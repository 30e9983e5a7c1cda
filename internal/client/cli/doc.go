// Package cli provides the keygate command-line client.
//
// It runs either a single command given on the command line
// (e.g. "keygate-client users") or, with no command, an interactive REPL.
// The access token from the last login is kept in the configured token file
// so later invocations are already authenticated.
//
// Commands: register, login, logout, whoami, users, promote <user>,
// demote <user>, array, help, exit.
package cli

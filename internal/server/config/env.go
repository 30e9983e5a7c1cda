package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/keygate/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv overlays values from environment variables. Variables from a
// .env file (the one named by -env-file, else ./.env when present) are
// loaded first; they never replace variables already set in the process.
//
// Recognised variables:
//
//	HTTP_ADDR                    bind address
//	DATABASE_URL                 full PostgreSQL DSN
//	POSTGRES_USER, POSTGRES_PASSWORD, POSTGRES_DB,
//	POSTGRES_HOST, POSTGRES_PORT DSN parts, used when DATABASE_URL is unset
//	SECRET_KEY                   JWT signing secret
//	ACCESS_TOKEN_EXPIRE_MINUTES  token lifetime in minutes
//	ADMIN_SECRET                 registration secret
//	BCRYPT_COST                  bcrypt work factor
//	LIVE_ADMIN_CHECK             true/false
//	CORS_ORIGINS                 comma-separated list
//	LOG_LEVEL                    debug/info/warn/error
func parseEnv(config *Config) {
	loadEnvFile()

	setString(&config.EndpointAddrHTTP, os.Getenv("HTTP_ADDR"))
	setString(&config.SecretKey, os.Getenv("SECRET_KEY"))
	setString(&config.AdminSecret, os.Getenv("ADMIN_SECRET"))
	setString(&config.LogLevel, os.Getenv("LOG_LEVEL"))

	if dsn, ok := databaseDSNFromEnv(); ok {
		config.DatabaseDSN = dsn
	}

	if m, ok := getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES"); ok {
		config.AccessTokenValidityDuration = time.Duration(m) * time.Minute
	}
	if cost, ok := getEnvInt("BCRYPT_COST"); ok {
		config.BcryptCost = cost
	}
	if v := os.Getenv("LIVE_ADMIN_CHECK"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(fmt.Errorf("LIVE_ADMIN_CHECK: %w", err))
		}
		config.LiveAdminCheck = b
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		config.CORSOrigins = splitList(v)
	}
}

func loadEnvFile() {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
		return
	}
	// a missing ./.env is normal
	_ = godotenv.Load()
}

// databaseDSNFromEnv prefers DATABASE_URL and otherwise composes a DSN from
// the POSTGRES_* parts, but only if at least one of them is set.
func databaseDSNFromEnv() (string, bool) {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url, true
	}

	keys := []string{"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB", "POSTGRES_HOST", "POSTGRES_PORT"}
	anySet := false
	for _, k := range keys {
		if os.Getenv(k) != "" {
			anySet = true
			break
		}
	}
	if !anySet {
		return "", false
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getEnv("POSTGRES_USER", "postgres"), getEnv("POSTGRES_PASSWORD", "admin")),
		Host:     net.JoinHostPort(getEnv("POSTGRES_HOST", "localhost"), getEnv("POSTGRES_PORT", "5432")),
		Path:     "/" + getEnv("POSTGRES_DB", "node_exercise"),
		RawQuery: "sslmode=disable",
	}
	return u.String(), true
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt reads an integer variable. Panics on a malformed value.
func getEnvInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	return n, true
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimRight(strings.TrimSpace(p), "/"); s != "" {
			out = append(out, s)
		}
	}
	return out
}

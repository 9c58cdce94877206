// Package config builds the immutable process configuration from the
// environment. It is read once in main and passed by value into the
// constructors that need it; nothing reads ambient environment state after
// startup.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/walletgate/siwn/core"
)

// Config is the process configuration.
type Config struct {
	// ListenAddr is the HTTP bind address, default ":9000".
	ListenAddr string

	// AllowedDomains is the origin allow-list, parsed from a comma-separated
	// pattern list (exact, "*.suffix" or "prefix:*" forms).
	AllowedDomains []string

	// Secret is the long random secret used only to derive per-address
	// identity-store credentials. Never exposed in any response.
	Secret string

	// RedisURL enables the redis nonce store and the login event stream.
	RedisURL string

	// DatabaseURL enables the postgres nonce and wallet-mapping tables.
	DatabaseURL string

	// GoTrueURL and GoTrueServiceKey select the external identity store.
	// When GoTrueURL is empty the in-process provider is used instead.
	GoTrueURL        string
	GoTrueServiceKey string
}

// FromEnv reads the configuration from the environment.
func FromEnv() Config {
	cfg := Config{
		ListenAddr:       os.Getenv("LISTEN_ADDR"),
		AllowedDomains:   splitPatterns(os.Getenv("SIWN_ALLOWED_DOMAINS")),
		Secret:           os.Getenv("SIWN_SECRET"),
		RedisURL:         os.Getenv("REDIS_URL"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		GoTrueURL:        os.Getenv("GOTRUE_URL"),
		GoTrueServiceKey: os.Getenv("GOTRUE_SERVICE_KEY"),
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":9000"
	}
	return cfg
}

// Validate reports missing required configuration.
func (c Config) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("%w: SIWN_SECRET is not set", core.ErrConfigurationMissing)
	}
	if len(c.AllowedDomains) == 0 {
		return fmt.Errorf("%w: SIWN_ALLOWED_DOMAINS is not set", core.ErrConfigurationMissing)
	}
	return nil
}

func splitPatterns(raw string) []string {
	var patterns []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			patterns = append(patterns, part)
		}
	}
	return patterns
}

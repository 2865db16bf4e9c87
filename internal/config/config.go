// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/readiness/internal/adapters/repository"
	"github.com/okian/readiness/internal/auth"
	"github.com/okian/readiness/internal/domain/catalog"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the history backend: memory, sqlite, postgres or none.
	StoreDriver string `koanf:"store_driver"`

	// StoreDSN is the SQLite path or Postgres URL.
	StoreDSN string `koanf:"store_dsn"`

	// StoreTimeoutMS bounds each history store call.
	StoreTimeoutMS int `koanf:"store_timeout_ms"`

	// OwnerMode keys records by user or by company.
	OwnerMode string `koanf:"owner_mode"`

	// AuthMode selects accounts, shared_secret or open.
	AuthMode string `koanf:"auth_mode"`

	// JWTSecret signs session tokens. Empty means a random key per process.
	JWTSecret string `koanf:"jwt_secret"`

	SessionIdleMinutes int `koanf:"session_idle_minutes"`
	TokenTTLMinutes    int `koanf:"token_ttl_minutes"`

	// SharedSecrets maps owner keys to secrets for shared_secret mode.
	// From env: READINESS_SHARED_SECRETS="acme:s1,globex:s2".
	SharedSecrets map[string]string `koanf:"shared_secrets"`

	// DedupeSize sets the size of the idempotency key cache.
	DedupeSize int `koanf:"dedupe_size"`

	// Dimensions replaces the built-in catalog when set (file only).
	Dimensions []catalog.Dimension `koanf:"dimensions"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		StoreDriver:        repository.DriverMemory,
		StoreTimeoutMS:     5000,
		OwnerMode:          string(auth.OwnerUser),
		AuthMode:           string(auth.ModeAccounts),
		SessionIdleMinutes: 30,
		TokenTTLMinutes:    12 * 60,
		DedupeSize:         50_000,
	}
}

// Validate checks field values and cross-field rules.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	case c.StoreTimeoutMS <= 0:
		return fmt.Errorf("%w: store_timeout_ms must be positive", ErrInvalidConfig)
	case c.SessionIdleMinutes <= 0 || c.TokenTTLMinutes <= 0:
		return fmt.Errorf("%w: session_idle_minutes and token_ttl_minutes must be positive", ErrInvalidConfig)
	case c.DedupeSize < 0:
		return fmt.Errorf("%w: dedupe_size must not be negative", ErrInvalidConfig)
	}

	switch c.StoreDriver {
	case repository.DriverMemory, repository.DriverNone:
	case repository.DriverSQLite, repository.DriverPostgres:
		if c.StoreDSN == "" {
			return fmt.Errorf("%w: store_dsn is required for %s", ErrInvalidConfig, c.StoreDriver)
		}
	default:
		return fmt.Errorf("%w: store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}

	switch auth.OwnerMode(c.OwnerMode) {
	case auth.OwnerUser, auth.OwnerCompany:
	default:
		return fmt.Errorf("%w: owner_mode %q", ErrInvalidConfig, c.OwnerMode)
	}

	switch auth.Mode(c.AuthMode) {
	case auth.ModeAccounts, auth.ModeOpen:
	case auth.ModeSharedSecret:
		if len(c.SharedSecrets) == 0 {
			return fmt.Errorf("%w: shared_secrets is required for shared_secret mode", ErrInvalidConfig)
		}
		for key, secret := range c.SharedSecrets {
			if strings.TrimSpace(key) == "" || strings.TrimSpace(secret) == "" {
				return fmt.Errorf("%w: shared_secrets entry %q has a blank key or secret", ErrInvalidConfig, key)
			}
		}
	default:
		return fmt.Errorf("%w: auth_mode %q", ErrInvalidConfig, c.AuthMode)
	}

	if _, err := c.Catalog(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Catalog returns the configured catalog, or the built-in one.
func (c *Config) Catalog() (catalog.Catalog, error) {
	if len(c.Dimensions) == 0 {
		return catalog.Default(), nil
	}
	return catalog.New(c.Dimensions)
}

// OwnerColumn maps the owner mode onto the history owner column.
func (c *Config) OwnerColumn() repository.OwnerColumn {
	if auth.OwnerMode(c.OwnerMode) == auth.OwnerCompany {
		return repository.OwnerCompanyID
	}
	return repository.OwnerUserID
}

// StoreTimeout returns StoreTimeoutMS as a duration.
func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.StoreTimeoutMS) * time.Millisecond
}

// SessionIdle returns SessionIdleMinutes as a duration.
func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

// TokenTTL returns TokenTTLMinutes as a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

package auth

import (
	"time"

	"github.com/okian/readiness/pkg/logger"
)

// Defaults used when no option overrides them.
const (
	DefaultIdleTimeout = 30 * time.Minute
	DefaultTokenTTL    = 12 * time.Hour
	MinPasswordLength  = 8
)

// Option configures a Gate.
type Option func(*Gate)

// WithMode sets the sign-in mode.
func WithMode(m Mode) Option {
	return func(g *Gate) { g.mode = m }
}

// WithOwnerMode sets whether account records are keyed by user or company.
func WithOwnerMode(m OwnerMode) Option {
	return func(g *Gate) { g.ownerMode = m }
}

// WithSigningKey sets the HS256 key for session tokens.
func WithSigningKey(key []byte) Option {
	return func(g *Gate) { g.signingKey = append([]byte(nil), key...) }
}

// WithIdleTimeout sets how long a session may sit unused.
func WithIdleTimeout(d time.Duration) Option {
	return func(g *Gate) {
		if d > 0 {
			g.idle = d
		}
	}
}

// WithTokenTTL sets the absolute token lifetime.
func WithTokenTTL(d time.Duration) Option {
	return func(g *Gate) {
		if d > 0 {
			g.ttl = d
		}
	}
}

// WithSharedSecrets sets owner key -> secret pairs for shared-secret mode.
func WithSharedSecrets(secrets map[string]string) Option {
	return func(g *Gate) {
		g.secrets = make(map[string]string, len(secrets))
		for k, v := range secrets {
			g.secrets[k] = v
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(g *Gate) { g.bcryptCost = cost }
}

// WithLogger sets the gate's logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.log = l
		}
	}
}

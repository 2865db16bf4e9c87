package repository

import (
	"time"

	"github.com/okian/readiness/pkg/logger"
)

// DefaultTimeout bounds a single store call when no option overrides it.
const DefaultTimeout = 5 * time.Second

// Option configures a Timed history.
type Option func(*Timed)

// WithTimeout sets the per-call deadline.
func WithTimeout(d time.Duration) Option {
	return func(t *Timed) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithLogger sets the logger used for store failures.
func WithLogger(l logger.Logger) Option {
	return func(t *Timed) {
		if l != nil {
			t.log = l
		}
	}
}

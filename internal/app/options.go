package service

import (
	"time"

	"github.com/okian/readiness/internal/adapters/repository"
	"github.com/okian/readiness/internal/domain/catalog"
	"github.com/okian/readiness/internal/domain/model"
	"github.com/okian/readiness/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHistory sets the history store. Without it persistence is disabled.
func WithHistory(h repository.History) Option {
	return func(s *Service) {
		if h != nil {
			s.rawHistory = h
		}
	}
}

// WithCatalog sets the question catalog.
func WithCatalog(c catalog.Catalog) Option {
	return func(s *Service) {
		if c.Len() > 0 {
			s.catalog = c
		}
	}
}

// WithClock sets the clock stamped on saved records.
func WithClock(c model.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithStoreTimeout bounds every history store call.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

// WithDedupeSize sets the size of the idempotency key cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

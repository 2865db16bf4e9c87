package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/okian/readiness/internal/domain/model"
	"github.com/okian/readiness/pkg/logger"
	"github.com/okian/readiness/pkg/metrics"
)

// Timed wraps a History with a per-call deadline and store metrics. A
// deadline or cancellation becomes ErrUnavailable; there is no retry.
type Timed struct {
	next    History
	timeout time.Duration
	log     logger.Logger
}

// NewTimed wraps next.
func NewTimed(next History, opts ...Option) *Timed {
	t := &Timed{next: next, timeout: DefaultTimeout, log: logger.Nop()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Append forwards to the wrapped store under the deadline.
func (t *Timed) Append(ctx context.Context, rec model.AssessmentRecord) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()
	err := t.next.Append(ctx, rec)
	return t.finish(ctx, "append", start, err)
}

// QueryByOwner forwards to the wrapped store under the deadline.
func (t *Timed) QueryByOwner(ctx context.Context, owner string) ([]model.AssessmentRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()
	recs, err := t.next.QueryByOwner(ctx, owner)
	if err = t.finish(ctx, "query", start, err); err != nil {
		return nil, err
	}
	return recs, nil
}

// Close closes the wrapped store when it supports closing.
func (t *Timed) Close() error {
	if c, ok := t.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (t *Timed) finish(ctx context.Context, op string, start time.Time, err error) error {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000.0)
	if err == nil {
		return nil
	}

	kind := errorKind(err)
	if kind != "disabled" {
		metrics.RecordStoreError(op, kind)
		t.log.Warn(ctx, "history store call failed",
			logger.String("op", op),
			logger.String("kind", kind),
			logger.Error(err))
	}
	if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrPersistenceDisabled) || errors.Is(err, ErrCorruptRecord) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrPersistenceDisabled):
		return "disabled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrCorruptRecord):
		return "corrupt"
	default:
		return "unavailable"
	}
}

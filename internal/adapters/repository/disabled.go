package repository

import (
	"context"

	"github.com/okian/readiness/internal/domain/model"
)

// Disabled is the history used when no store is configured. Every call
// returns ErrPersistenceDisabled so callers can tell it apart from an empty
// history.
type Disabled struct{}

// Append always fails with ErrPersistenceDisabled.
func (Disabled) Append(context.Context, model.AssessmentRecord) error {
	return ErrPersistenceDisabled
}

// QueryByOwner always fails with ErrPersistenceDisabled.
func (Disabled) QueryByOwner(context.Context, string) ([]model.AssessmentRecord, error) {
	return nil, ErrPersistenceDisabled
}

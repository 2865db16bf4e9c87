// Package repository defines the assessment history contract and its backends.
package repository

import (
	"context"

	"github.com/okian/readiness/internal/domain/model"
)

// History is the append-only store of assessment records.
type History interface {
	// Append stores rec. A transient failure returns an error wrapping
	// ErrUnavailable; the caller decides what to tell the user.
	Append(ctx context.Context, rec model.AssessmentRecord) error

	// QueryByOwner returns the owner's records ordered by CreatedAt
	// ascending. No records is an empty slice, not an error.
	QueryByOwner(ctx context.Context, owner string) ([]model.AssessmentRecord, error)
}

func cloneRecord(rec model.AssessmentRecord) model.AssessmentRecord {
	scores := make(map[string]float64, len(rec.Scores))
	for k, v := range rec.Scores {
		scores[k] = v
	}
	rec.Scores = scores
	return rec
}

// Package model contains the persisted assessment record and its builder.
package model

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/readiness/internal/domain/scoring"
)

// AssessmentRecord is one saved snapshot of an owner's scores. Records are
// append-only: nothing updates or deletes them once stored.
type AssessmentRecord struct {
	ID        string             `json:"id"`
	Owner     string             `json:"owner"`
	Scores    map[string]float64 `json:"scores"`
	Overall   float64            `json:"overall"`
	CreatedAt time.Time          `json:"created_at"`
}

// Score returns the score of dim, or an absent OptionalScore when the record
// has none.
func (r AssessmentRecord) Score(dim string) OptionalScore {
	v, ok := r.Scores[dim]
	if !ok {
		return OptionalScore{}
	}
	return Some(v)
}

// Dimensions returns the record's dimension names sorted.
func (r AssessmentRecord) Dimensions() []string {
	names := make([]string, 0, len(r.Scores))
	for name := range r.Scores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildRecord assembles a record for identity stamped with clock's current
// time in UTC. The scores map is copied.
func BuildRecord(identity string, scores map[string]float64, overall float64, clock Clock) (AssessmentRecord, error) {
	if strings.TrimSpace(identity) == "" {
		return AssessmentRecord{}, fmt.Errorf("%w: empty identity", ErrInvalidInput)
	}
	if len(scores) == 0 {
		return AssessmentRecord{}, fmt.Errorf("%w: no scores", ErrInvalidInput)
	}
	if clock == nil {
		clock = SystemClock{}
	}

	copied := make(map[string]float64, len(scores))
	for name, s := range scores {
		if !validScore(s) {
			return AssessmentRecord{}, fmt.Errorf("%w: score for %q is %v", ErrInvalidInput, name, s)
		}
		copied[name] = s
	}
	if !validScore(overall) {
		return AssessmentRecord{}, fmt.Errorf("%w: overall is %v", ErrInvalidInput, overall)
	}

	return AssessmentRecord{
		ID:        uuid.NewString(),
		Owner:     identity,
		Scores:    copied,
		Overall:   overall,
		CreatedAt: clock.Now().UTC(),
	}, nil
}

func validScore(s float64) bool {
	return !math.IsNaN(s) && s >= scoring.MinScore && s <= scoring.MaxScore
}

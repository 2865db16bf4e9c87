package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/readiness/internal/domain/model"
)

// MemoryHistory keeps records in process memory, one slice per owner.
type MemoryHistory struct {
	mu      sync.RWMutex
	byOwner map[string][]model.AssessmentRecord
}

// NewMemoryHistory returns an empty in-memory history.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{byOwner: make(map[string][]model.AssessmentRecord)}
}

// Append inserts rec after every record with an equal or earlier CreatedAt.
func (m *MemoryHistory) Append(ctx context.Context, rec model.AssessmentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	recs := m.byOwner[rec.Owner]
	i := sort.Search(len(recs), func(i int) bool { return recs[i].CreatedAt.After(rec.CreatedAt) })
	recs = append(recs, model.AssessmentRecord{})
	copy(recs[i+1:], recs[i:])
	recs[i] = cloneRecord(rec)
	m.byOwner[rec.Owner] = recs
	return nil
}

// QueryByOwner returns copies of the owner's records, oldest first.
func (m *MemoryHistory) QueryByOwner(ctx context.Context, owner string) ([]model.AssessmentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := m.byOwner[owner]
	out := make([]model.AssessmentRecord, 0, len(recs))
	for _, r := range recs {
		out = append(out, cloneRecord(r))
	}
	return out, nil
}

// Count returns the total number of records held.
func (m *MemoryHistory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, recs := range m.byOwner {
		n += len(recs)
	}
	return n
}

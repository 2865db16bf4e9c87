package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/okian/readiness/internal/domain/model"
)

// OwnerColumn is the column that carries the owner key.
type OwnerColumn string

// Allowed owner columns.
const (
	OwnerUserID    OwnerColumn = "user_id"
	OwnerCompanyID OwnerColumn = "company_id"
)

// CreatedAtLayout is fixed width so that lexical order equals time order.
const CreatedAtLayout = "2006-01-02T15:04:05.000000Z"

// ParseOwnerColumn validates s against the allow-list. The result is safe to
// splice into SQL as an identifier.
func ParseOwnerColumn(s string) (OwnerColumn, error) {
	switch OwnerColumn(s) {
	case OwnerUserID, OwnerCompanyID:
		return OwnerColumn(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOwnerColumn, s)
	}
}

// Row is the wire shape of a record:
// {<owner column>: string, overall: number, scores: {dim: number}, created_at: string}.
type Row struct {
	ID        string
	Owner     string
	Overall   float64
	Scores    map[string]float64
	CreatedAt string
}

// FormatCreatedAt renders t in UTC with CreatedAtLayout.
func FormatCreatedAt(t time.Time) string {
	return t.UTC().Format(CreatedAtLayout)
}

// ParseCreatedAt accepts CreatedAtLayout and any RFC 3339 timestamp.
func ParseCreatedAt(s string) (time.Time, error) {
	if t, err := time.Parse(CreatedAtLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: created_at %q: %w", ErrCorruptRecord, s, err)
	}
	return t.UTC(), nil
}

// RowFromRecord encodes rec.
func RowFromRecord(rec model.AssessmentRecord) Row {
	r := cloneRecord(rec)
	return Row{
		ID:        r.ID,
		Owner:     r.Owner,
		Overall:   r.Overall,
		Scores:    r.Scores,
		CreatedAt: FormatCreatedAt(r.CreatedAt),
	}
}

// Record decodes the row.
func (r Row) Record() (model.AssessmentRecord, error) {
	at, err := ParseCreatedAt(r.CreatedAt)
	if err != nil {
		return model.AssessmentRecord{}, err
	}
	rec := model.AssessmentRecord{
		ID:        r.ID,
		Owner:     r.Owner,
		Overall:   r.Overall,
		Scores:    r.Scores,
		CreatedAt: at,
	}
	if rec.Scores == nil {
		rec.Scores = map[string]float64{}
	}
	return cloneRecord(rec), nil
}

// MarshalRow renders the row as JSON with the owner under col.
func MarshalRow(r Row, col OwnerColumn) ([]byte, error) {
	if _, err := ParseOwnerColumn(string(col)); err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{
		"id":         r.ID,
		string(col):  r.Owner,
		"overall":    r.Overall,
		"scores":     r.Scores,
		"created_at": r.CreatedAt,
	})
}

// UnmarshalRow parses a JSON row whose owner sits under col.
func UnmarshalRow(data []byte, col OwnerColumn) (Row, error) {
	if _, err := ParseOwnerColumn(string(col)); err != nil {
		return Row{}, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Row{}, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	var r Row
	fields := []struct {
		key string
		dst any
	}{
		{"id", &r.ID},
		{string(col), &r.Owner},
		{"overall", &r.Overall},
		{"scores", &r.Scores},
		{"created_at", &r.CreatedAt},
	}
	for _, f := range fields {
		v, ok := raw[f.key]
		if !ok {
			if f.key == "id" {
				continue
			}
			return Row{}, fmt.Errorf("%w: missing %q", ErrCorruptRecord, f.key)
		}
		if err := json.Unmarshal(v, f.dst); err != nil {
			return Row{}, fmt.Errorf("%w: field %q: %w", ErrCorruptRecord, f.key, err)
		}
	}
	return r, nil
}

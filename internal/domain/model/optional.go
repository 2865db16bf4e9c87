package model

import (
	"bytes"
	"encoding/json"
)

// OptionalScore is a score that may be absent. An absent dimension is not
// the same as a zero score.
type OptionalScore struct {
	Value float64
	Valid bool
}

// Some wraps a present score.
func Some(v float64) OptionalScore { return OptionalScore{Value: v, Valid: true} }

// MarshalJSON encodes an absent score as null.
func (o OptionalScore) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON decodes null as absent.
func (o *OptionalScore) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = OptionalScore{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

package model

import "github.com/okian/readiness/internal/domain/scoring"

// ErrInvalidInput is returned when a record cannot be built from its inputs.
var ErrInvalidInput = scoring.ErrInvalidInput

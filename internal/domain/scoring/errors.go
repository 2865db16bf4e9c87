package scoring

import "errors"

// ErrInvalidInput marks malformed responses or empty aggregates. It signals a
// caller bug and no partial result accompanies it.
var ErrInvalidInput = errors.New("invalid input")

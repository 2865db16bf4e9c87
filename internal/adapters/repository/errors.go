package repository

import "errors"

// Sentinel kinds for history store errors.
var (
	// ErrUnavailable marks a transient store failure. Callers are told, never retried.
	ErrUnavailable = errors.New("history store unavailable")
	// ErrPersistenceDisabled is returned by every operation when no store is configured.
	ErrPersistenceDisabled = errors.New("persistence disabled")
	// ErrCorruptRecord marks a stored row that cannot be decoded.
	ErrCorruptRecord = errors.New("corrupt history record")
	// ErrInvalidOwnerColumn marks an owner column outside the allow-list.
	ErrInvalidOwnerColumn = errors.New("invalid owner column")
)

package service

import "errors"

// Sentinel errors returned by Service.
var (
	// ErrNotAuthenticated is returned by every operation called without a
	// signed-in session. It is checked before anything else.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSaveInProgress is returned when an earlier save with the same
	// idempotency key has not finished yet. Nothing is known to be stored.
	ErrSaveInProgress = errors.New("save with this idempotency key is in progress")
)

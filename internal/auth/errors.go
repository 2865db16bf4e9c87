package auth

import "errors"

// Sentinel kinds for access gate errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidAccount     = errors.New("invalid account details")
	ErrModeUnsupported    = errors.New("operation not supported in this auth mode")
	ErrMissingSigningKey  = errors.New("signing key is required")
)

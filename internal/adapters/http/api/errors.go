package api

import (
	"errors"
	"net/http"

	"github.com/okian/readiness/internal/adapters/repository"
	service "github.com/okian/readiness/internal/app"
	"github.com/okian/readiness/internal/auth"
	"github.com/okian/readiness/internal/domain/scoring"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrMissingToken = errors.New("missing bearer token")
)

// Error codes returned in errorResponse.Code.
const (
	codeInvalidInput       = "invalid_input"
	codeNotAuthenticated   = "not_authenticated"
	codeSessionExpired     = "session_expired"
	codeInvalidCredentials = "invalid_credentials"
	codeAccountExists      = "account_exists"
	codeUnsupported        = "unsupported"
	codeStoreUnavailable   = "store_unavailable"
	codeSaveInProgress     = "save_in_progress"
	codeInternal           = "internal"
)

// classify maps an error onto an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNotAuthenticated), errors.Is(err, ErrMissingToken):
		return http.StatusUnauthorized, codeNotAuthenticated
	case errors.Is(err, auth.ErrSessionExpired):
		return http.StatusUnauthorized, codeSessionExpired
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, codeInvalidCredentials
	case errors.Is(err, service.ErrSaveInProgress):
		return http.StatusConflict, codeSaveInProgress
	case errors.Is(err, auth.ErrAccountExists):
		return http.StatusConflict, codeAccountExists
	case errors.Is(err, auth.ErrModeUnsupported):
		return http.StatusBadRequest, codeUnsupported
	case errors.Is(err, scoring.ErrInvalidInput), errors.Is(err, auth.ErrInvalidAccount), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, codeInvalidInput
	case errors.Is(err, repository.ErrUnavailable), errors.Is(err, repository.ErrCorruptRecord):
		return http.StatusServiceUnavailable, codeStoreUnavailable
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		writeError(w, status, code, nil)
		return
	}
	writeError(w, status, code, err)
}

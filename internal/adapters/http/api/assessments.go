package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/readiness/internal/adapters/repository"
	service "github.com/okian/readiness/internal/app"
	"github.com/okian/readiness/internal/auth"
	"github.com/okian/readiness/internal/domain/catalog"
	"github.com/okian/readiness/internal/domain/model"
	"github.com/okian/readiness/internal/domain/scoring"
	"github.com/okian/readiness/pkg/logger"
)

// IdempotencyHeader carries the client's key for a save.
const IdempotencyHeader = "Idempotency-Key"

// Save statuses.
const (
	saveStatusSaved     = "saved"
	saveStatusDuplicate = "duplicate"
)

// assessmentRequest mirrors the OpenAPI schema for the assessment endpoints.
type assessmentRequest struct {
	Responses map[string][]int `json:"responses"`
}

type questionnaireResponse struct {
	Dimensions []catalog.Dimension `json:"dimensions"`
	Scale      scale               `json:"scale"`
}

type scale struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Default int `json:"default"`
}

type saveResponse struct {
	Status     string                  `json:"status"`
	Saved      bool                    `json:"saved"`
	Evaluation service.Evaluation      `json:"evaluation"`
	RecordID   string                  `json:"record_id,omitempty"`
	Record     *model.AssessmentRecord `json:"record,omitempty"`
}

// storeErrorResponse keeps the scores alongside the failure.
type storeErrorResponse struct {
	errorResponse
	Evaluation service.Evaluation `json:"evaluation"`
}

// handleQuestionnaire handles GET /api/questionnaire.
func (s *Server) handleQuestionnaire(w http.ResponseWriter, r *http.Request) {
	dims, err := s.deps.Questionnaire(SessionFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questionnaireResponse{
		Dimensions: dims,
		Scale:      scale{Min: scoring.MinResponse, Max: scoring.MaxResponse, Default: scoring.DefaultResponse},
	})
}

// handleEvaluate handles POST /api/assessments/evaluate.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	var req assessmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, authFirst(sess, err))
		return
	}
	eval, err := s.deps.Evaluate(r.Context(), sess, req.Responses)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eval)
}

// handleSave handles POST /api/assessments.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	var req assessmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, authFirst(sess, err))
		return
	}
	key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))

	res, err := s.deps.Save(r.Context(), sess, req.Responses, key)
	switch {
	case errors.Is(err, repository.ErrPersistenceDisabled):
		writeJSON(w, http.StatusOK, saveResponse{Status: service.StatusDisabled, Evaluation: res.Evaluation})
		return
	case errors.Is(err, repository.ErrUnavailable):
		s.log.Warn(r.Context(), "save failed, returning scores", logger.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, storeErrorResponse{
			errorResponse: errorResponse{Code: codeStoreUnavailable, Message: err.Error()},
			Evaluation:    res.Evaluation,
		})
		return
	case err != nil:
		writeServiceError(w, err)
		return
	}

	if res.Duplicate {
		writeJSON(w, http.StatusOK, saveResponse{
			Status: saveStatusDuplicate, Evaluation: res.Evaluation, RecordID: res.RecordID,
		})
		return
	}
	writeJSON(w, http.StatusCreated, saveResponse{
		Status: saveStatusSaved, Saved: true, Evaluation: res.Evaluation, RecordID: res.RecordID, Record: res.Record,
	})
}

// handleHistory handles GET /api/assessments.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.History(r.Context(), SessionFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// authFirst reports a missing session ahead of any body error.
func authFirst(sess auth.Session, err error) error {
	if !sess.Authenticated {
		return service.ErrNotAuthenticated
	}
	return err
}

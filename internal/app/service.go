// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/readiness/internal/adapters/repository"
	"github.com/okian/readiness/internal/auth"
	"github.com/okian/readiness/internal/domain/catalog"
	"github.com/okian/readiness/internal/domain/chart"
	"github.com/okian/readiness/internal/domain/dedupe"
	"github.com/okian/readiness/internal/domain/model"
	"github.com/okian/readiness/internal/domain/scoring"
	"github.com/okian/readiness/pkg/logger"
	"github.com/okian/readiness/pkg/metrics"
)

// History statuses. Disabled persistence is reported as a status so callers
// can tell it apart from an owner with no records.
const (
	StatusOK       = "ok"
	StatusEmpty    = "empty"
	StatusDisabled = "persistence_disabled"
)

// Evaluation is the scored questionnaire plus its radar series.
type Evaluation struct {
	Dimensions   []scoring.DimensionResult `json:"dimensions"`
	Overall      float64                   `json:"overall"`
	OverallLabel scoring.Label             `json:"overall_label"`
	Radar        chart.RadarSeries         `json:"radar"`
}

// SaveResult always carries the evaluation, even when the save failed.
type SaveResult struct {
	Evaluation Evaluation              `json:"evaluation"`
	Record     *model.AssessmentRecord `json:"record,omitempty"`
	RecordID   string                  `json:"record_id,omitempty"`
	Saved      bool                    `json:"saved"`
	Duplicate  bool                    `json:"duplicate"`
}

// HistoryView is an owner's saved records with their trend series.
type HistoryView struct {
	Status  string                   `json:"status"`
	Records []model.AssessmentRecord `json:"records"`
	Trend   chart.TrendSeries        `json:"trend"`
}

// Service implements the API dependencies for the assessment system.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog    catalog.Catalog
	rawHistory repository.History
	history    repository.History
	deduper    dedupe.Deduper
	clock      model.Clock

	// Configuration
	storeTimeout time.Duration
	dedupeSize   int

	// State
	started     bool
	evaluations atomic.Int64
	saves       atomic.Int64
	duplicates  atomic.Int64
	storeErrors atomic.Int64

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		catalog:      catalog.Default(),
		rawHistory:   repository.Disabled{},
		clock:        model.SystemClock{},
		storeTimeout: repository.DefaultTimeout,
		dedupeSize:   dedupe.DefaultMaxSize,
		logger:       logger.Nop(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	s.history = repository.NewTimed(s.rawHistory,
		repository.WithTimeout(s.storeTimeout),
		repository.WithLogger(s.logger.Named("history")),
	)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start marks the service ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	_, disabled := s.rawHistory.(repository.Disabled)
	s.started = true
	s.logger.Info(ctx, "assessment service started",
		logger.Int("dimensions", s.catalog.Len()),
		logger.Int("questions", s.catalog.QuestionCount()),
		logger.Bool("persistence", !disabled),
		logger.Duration("storeTimeout", s.storeTimeout),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	if disabled {
		s.logger.Warn(ctx, "no history store configured, saves will be refused")
	}
	return nil
}

// Stop closes the history store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if c, ok := s.history.(io.Closer); ok {
		if err := c.Close(); err != nil {
			s.logger.Warn(context.Background(), "failed to close history store", logger.Error(err))
		}
	}
	s.started = false
	s.logger.Info(context.Background(), "assessment service stopped")
}

// Questionnaire returns the catalog's dimensions and questions.
func (s *Service) Questionnaire(sess auth.Session) ([]catalog.Dimension, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	return s.catalog.Dimensions(), nil
}

// Evaluate scores responses without saving anything.
func (s *Service) Evaluate(ctx context.Context, sess auth.Session, responses map[string][]int) (Evaluation, error) {
	if err := requireSession(sess); err != nil {
		return Evaluation{}, err
	}
	eval, _, err := s.evaluate(ctx, responses)
	return eval, err
}

// Save scores responses and appends the result to the owner's history.
// The evaluation is returned even when the append fails, together with an
// error wrapping repository.ErrUnavailable or ErrPersistenceDisabled. A
// non-empty idempotencyKey makes retries of the same save a no-op; a retry
// that overlaps the first attempt gets ErrSaveInProgress.
func (s *Service) Save(ctx context.Context, sess auth.Session, responses map[string][]int, idempotencyKey string) (SaveResult, error) {
	if err := requireSession(sess); err != nil {
		return SaveResult{}, err
	}
	eval, scores, err := s.evaluate(ctx, responses)
	if err != nil {
		return SaveResult{}, err
	}
	res := SaveResult{Evaluation: eval}

	var key string
	if idempotencyKey != "" {
		key = dedupe.Key(sess.Identity, idempotencyKey)
		if id, seen := s.deduper.Reserve(ctx, key); seen {
			if id == "" {
				metrics.RecordSave("in_progress")
				s.logger.Debug(ctx, "save already in flight",
					logger.String("owner", sess.Identity))
				return res, ErrSaveInProgress
			}
			metrics.RecordDuplicateSave()
			s.duplicates.Add(1)
			s.logger.Debug(ctx, "duplicate save skipped",
				logger.String("owner", sess.Identity),
				logger.String("recordID", id))
			res.Duplicate = true
			res.RecordID = id
			return res, nil
		}
	}
	release := func() {
		if key != "" {
			s.deduper.Release(ctx, key)
		}
	}

	rec, err := model.BuildRecord(sess.Identity, scores, eval.Overall, s.clock)
	if err != nil {
		release()
		return res, err
	}
	if err := s.history.Append(ctx, rec); err != nil {
		release()
		if errors.Is(err, repository.ErrPersistenceDisabled) {
			metrics.RecordSave("disabled")
			return res, err
		}
		metrics.RecordSave("unavailable")
		s.storeErrors.Add(1)
		s.logger.Error(ctx, "failed to save assessment",
			logger.String("owner", sess.Identity),
			logger.Error(err))
		return res, err
	}

	if key != "" {
		s.deduper.Commit(ctx, key, rec.ID)
	}
	metrics.RecordSave("ok")
	s.saves.Add(1)
	s.logger.Info(ctx, "assessment saved",
		logger.String("owner", sess.Identity),
		logger.String("recordID", rec.ID),
		logger.Float64("overall", rec.Overall))

	res.Record = &rec
	res.RecordID = rec.ID
	res.Saved = true
	return res, nil
}

// History returns the owner's records, oldest first, with trend series.
func (s *Service) History(ctx context.Context, sess auth.Session) (HistoryView, error) {
	if err := requireSession(sess); err != nil {
		return HistoryView{}, err
	}

	recs, err := s.history.QueryByOwner(ctx, sess.Identity)
	switch {
	case errors.Is(err, repository.ErrPersistenceDisabled):
		metrics.RecordHistoryQuery("disabled")
		return HistoryView{Status: StatusDisabled, Records: []model.AssessmentRecord{}}, nil
	case err != nil:
		metrics.RecordHistoryQuery("unavailable")
		s.storeErrors.Add(1)
		s.logger.Error(ctx, "failed to load history",
			logger.String("owner", sess.Identity),
			logger.Error(err))
		return HistoryView{}, err
	}

	view := HistoryView{Status: StatusOK, Records: recs, Trend: chart.Trend(s.catalog.Names(), recs)}
	if len(recs) == 0 {
		view.Status = StatusEmpty
	}
	metrics.RecordHistoryQuery(view.Status)
	return view, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, disabled := s.rawHistory.(repository.Disabled)
	return map[string]interface{}{
		"started":        s.started,
		"dimensions":     s.catalog.Len(),
		"questions":      s.catalog.QuestionCount(),
		"persistence":    !disabled,
		"storeTimeoutMs": s.storeTimeout.Milliseconds(),
		"dedupeSize":     s.dedupeSize,
		"dedupeEntries":  s.deduper.Size(),
		"evaluations":    s.evaluations.Load(),
		"saves":          s.saves.Load(),
		"duplicates":     s.duplicates.Load(),
		"storeErrors":    s.storeErrors.Load(),
	}
}

func (s *Service) evaluate(ctx context.Context, responses map[string][]int) (Evaluation, map[string]float64, error) {
	sheet, err := scoring.Evaluate(s.catalog, responses)
	if err != nil {
		metrics.RecordInvalidInput()
		s.logger.Debug(ctx, "rejected responses", logger.Error(err))
		return Evaluation{}, nil, err
	}
	metrics.RecordEvaluation()
	metrics.ObserveOverallScore(sheet.Overall)
	s.evaluations.Add(1)

	return Evaluation{
		Dimensions:   sheet.Dimensions,
		Overall:      sheet.Overall,
		OverallLabel: sheet.OverallLabel,
		Radar:        chart.Radar(sheet.Dimensions),
	}, sheet.Scores(), nil
}

func requireSession(sess auth.Session) error {
	if !sess.Authenticated || sess.Identity == "" {
		return ErrNotAuthenticated
	}
	return nil
}

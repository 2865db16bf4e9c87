// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	service "github.com/okian/readiness/internal/app"
	"github.com/okian/readiness/internal/auth"
	"github.com/okian/readiness/internal/domain/catalog"
	"github.com/okian/readiness/pkg/logger"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Questionnaire(sess auth.Session) ([]catalog.Dimension, error)
	Evaluate(ctx context.Context, sess auth.Session, responses map[string][]int) (service.Evaluation, error)
	Save(ctx context.Context, sess auth.Session, responses map[string][]int, idempotencyKey string) (service.SaveResult, error)
	History(ctx context.Context, sess auth.Session) (service.HistoryView, error)
}

// Gate signs callers in and resolves their tokens.
type Gate interface {
	Mode() auth.Mode
	SignUp(ctx context.Context, req auth.SignUpRequest) (auth.Session, string, error)
	SignIn(ctx context.Context, cred auth.Credentials) (auth.Session, string, error)
	Resolve(ctx context.Context, token string) (auth.Session, error)
	SignOut(ctx context.Context, token string) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps  Dependencies
	gate  Gate
	stats StatsProvider
	log   logger.Logger
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, gate Gate, stats StatsProvider, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{deps: deps, gate: gate, stats: stats, log: log}
}

// Router builds the chi router with every route attached.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(MetricsMiddleware)
	r.Use(s.requestLogger)
	s.Register(r)
	return r
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", HandleHealth)
	r.Get("/stats", NewStatsHandler(s.stats).HandleStats)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/signup", s.handleSignUp)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		// Session-resolved routes; the service refuses anonymous callers
		r.Group(func(r chi.Router) {
			r.Use(s.sessionMiddleware)

			r.Get("/questionnaire", s.handleQuestionnaire)
			r.Post("/assessments/evaluate", s.handleEvaluate)
			r.Post("/assessments", s.handleSave)
			r.Get("/assessments", s.handleHistory)
		})
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}

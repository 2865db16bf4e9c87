package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/readiness/internal/adapters/http/api"
	"github.com/okian/readiness/internal/adapters/http/swagger"
	"github.com/okian/readiness/internal/adapters/repository"
	service "github.com/okian/readiness/internal/app"
	"github.com/okian/readiness/internal/auth"
	"github.com/okian/readiness/internal/config"
	"github.com/okian/readiness/pkg/logger"
	"github.com/okian/readiness/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	sessionPruneInterval      = time.Minute
	nanosecondsPerMillisecond = 1e6
	generatedKeyBytes         = 32
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.InitWithWriter(os.Stdout, cfg.LogFormat); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := buildService(ctx, cfg, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	gate, err := buildGate(ctx, cfg, log)
	if err != nil {
		return err
	}

	go startSystemMetricsUpdater(ctx)
	go startSessionPruner(ctx, gate)

	router := api.NewServer(svc, gate, svc, log.Named("http")).Router()
	swagger.Register(router)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("auth_mode", cfg.AuthMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

func buildService(ctx context.Context, cfg *config.Config, log logger.Logger) (*service.Service, error) {
	cat, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}
	history, err := repository.Open(ctx, repository.OpenConfig{
		Driver:      cfg.StoreDriver,
		DSN:         cfg.StoreDSN,
		OwnerColumn: cfg.OwnerColumn(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	return service.New(
		service.WithLogger(log),
		service.WithCatalog(cat),
		service.WithHistory(history),
		service.WithStoreTimeout(cfg.StoreTimeout()),
		service.WithDedupeSize(cfg.DedupeSize),
	), nil
}

func buildGate(ctx context.Context, cfg *config.Config, log logger.Logger) (*auth.Gate, error) {
	key := []byte(cfg.JWTSecret)
	if len(key) == 0 {
		key = make([]byte, generatedKeyBytes)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate signing key: %w", err)
		}
		log.Warn(ctx, "jwt_secret not set; using a random key, sessions will not survive a restart")
	}
	gate, err := auth.New(
		auth.WithMode(auth.Mode(cfg.AuthMode)),
		auth.WithOwnerMode(auth.OwnerMode(cfg.OwnerMode)),
		auth.WithSigningKey(key),
		auth.WithIdleTimeout(cfg.SessionIdle()),
		auth.WithTokenTTL(cfg.TokenTTL()),
		auth.WithSharedSecrets(cfg.SharedSecrets),
		auth.WithLogger(log.Named("auth")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build access gate: %w", err)
	}
	return gate, nil
}

// startSystemMetricsUpdater refreshes runtime gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startSessionPruner drops idle sessions so the gate does not grow unbounded.
func startSessionPruner(ctx context.Context, gate *auth.Gate) {
	ticker := time.NewTicker(sessionPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gate.Prune(ctx)
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

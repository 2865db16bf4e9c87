package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/readiness/internal/domain/model"
)

// PostgresConfig configures the Postgres connection pool.
type PostgresConfig struct {
	DSN             string
	OwnerColumn     OwnerColumn
	MaxConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// PostgresHistory stores records in a Postgres table.
type PostgresHistory struct {
	pool *pgxpool.Pool
	col  OwnerColumn
}

// NewPostgresHistory connects, pings and creates the assessments table if needed.
func NewPostgresHistory(ctx context.Context, cfg PostgresConfig) (*PostgresHistory, error) {
	if _, err := ParseOwnerColumn(string(cfg.OwnerColumn)); err != nil {
		return nil, err
	}
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrUnavailable, err)
	}

	h := &PostgresHistory{pool: pool, col: cfg.OwnerColumn}
	if err := h.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return h, nil
}

// Close closes the pool.
func (h *PostgresHistory) Close() error {
	h.pool.Close()
	return nil
}

func (h *PostgresHistory) initSchema(ctx context.Context) error {
	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS assessments (
			seq BIGSERIAL PRIMARY KEY,
			id UUID UNIQUE NOT NULL,
			%[1]s TEXT NOT NULL,
			overall DOUBLE PRECISION NOT NULL,
			scores JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_assessments_%[1]s ON assessments (%[1]s, created_at);
	`, h.col)
	_, err := h.pool.Exec(ctx, schema)
	return err
}

// Append inserts rec.
func (h *PostgresHistory) Append(ctx context.Context, rec model.AssessmentRecord) error {
	scores, err := json.Marshal(rec.Scores)
	if err != nil {
		return fmt.Errorf("failed to encode scores: %w", err)
	}
	query := fmt.Sprintf(`
		INSERT INTO assessments (id, %s, overall, scores, created_at)
		VALUES ($1, $2, $3, $4::jsonb, $5)
	`, h.col)
	if _, err := h.pool.Exec(ctx, query, rec.ID, rec.Owner, rec.Overall, string(scores), rec.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("%w: append: %w", ErrUnavailable, err)
	}
	return nil
}

// QueryByOwner returns the owner's records, oldest first.
func (h *PostgresHistory) QueryByOwner(ctx context.Context, owner string) ([]model.AssessmentRecord, error) {
	query := fmt.Sprintf(`
		SELECT id::text, %[1]s, overall, scores, created_at
		FROM assessments
		WHERE %[1]s = $1
		ORDER BY created_at ASC, seq ASC
	`, h.col)

	rows, err := h.pool.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	out := []model.AssessmentRecord{}
	for rows.Next() {
		var (
			rec    model.AssessmentRecord
			scores []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Owner, &rec.Overall, &scores, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", ErrUnavailable, err)
		}
		if err := json.Unmarshal(scores, &rec.Scores); err != nil {
			return nil, fmt.Errorf("%w: record %s: %w", ErrCorruptRecord, rec.ID, err)
		}
		rec.CreatedAt = rec.CreatedAt.UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return out, nil
}

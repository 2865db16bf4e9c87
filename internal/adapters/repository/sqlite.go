package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/okian/readiness/internal/domain/model"
)

// SQLiteHistory stores records in a local SQLite file.
type SQLiteHistory struct {
	db  *sql.DB
	col OwnerColumn
}

// NewSQLiteHistory opens dsn and creates the assessments table if needed.
func NewSQLiteHistory(ctx context.Context, dsn string, col OwnerColumn) (*SQLiteHistory, error) {
	if _, err := ParseOwnerColumn(string(col)); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer at a time avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrUnavailable, err)
	}

	s := &SQLiteHistory{db: db, col: col}
	if err = s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *SQLiteHistory) Close() error {
	return s.db.Close()
}

func (s *SQLiteHistory) initSchema(ctx context.Context) error {
	schema := fmt.Sprintf(`
    CREATE TABLE IF NOT EXISTS assessments (
        seq INTEGER PRIMARY KEY AUTOINCREMENT,
        id TEXT UNIQUE NOT NULL, -- UUID
        %[1]s TEXT NOT NULL,
        overall REAL NOT NULL,
        scores TEXT NOT NULL, -- JSON object dim -> score
        created_at TEXT NOT NULL -- UTC, fixed width
    );
    CREATE INDEX IF NOT EXISTS idx_assessments_%[1]s ON assessments (%[1]s, created_at);
    `, s.col)
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Append inserts rec.
func (s *SQLiteHistory) Append(ctx context.Context, rec model.AssessmentRecord) error {
	row := RowFromRecord(rec)
	scores, err := json.Marshal(row.Scores)
	if err != nil {
		return fmt.Errorf("failed to encode scores: %w", err)
	}
	query := fmt.Sprintf(
		"INSERT INTO assessments (id, %s, overall, scores, created_at) VALUES (?, ?, ?, ?, ?)", s.col)
	if _, err := s.db.ExecContext(ctx, query, row.ID, row.Owner, row.Overall, string(scores), row.CreatedAt); err != nil {
		return fmt.Errorf("%w: append: %w", ErrUnavailable, err)
	}
	return nil
}

// QueryByOwner returns the owner's records, oldest first.
func (s *SQLiteHistory) QueryByOwner(ctx context.Context, owner string) ([]model.AssessmentRecord, error) {
	query := fmt.Sprintf(
		"SELECT id, %[1]s, overall, scores, created_at FROM assessments WHERE %[1]s = ? ORDER BY created_at ASC, seq ASC", s.col)
	rows, err := s.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	out := []model.AssessmentRecord{}
	for rows.Next() {
		var (
			row    Row
			scores string
		)
		if err := rows.Scan(&row.ID, &row.Owner, &row.Overall, &scores, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", ErrUnavailable, err)
		}
		if err := json.Unmarshal([]byte(scores), &row.Scores); err != nil {
			return nil, fmt.Errorf("%w: record %s: %w", ErrCorruptRecord, row.ID, err)
		}
		rec, err := row.Record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return out, nil
}

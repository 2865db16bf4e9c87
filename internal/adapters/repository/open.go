package repository

import (
	"context"
	"fmt"
)

// Store drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// OpenConfig selects and configures a backend.
type OpenConfig struct {
	Driver      string
	DSN         string
	OwnerColumn OwnerColumn
}

// Open builds the backend named by cfg.Driver. The caller wraps it with
// NewTimed and closes it (via io.Closer) when done.
func Open(ctx context.Context, cfg OpenConfig) (History, error) {
	switch cfg.Driver {
	case DriverMemory:
		return NewMemoryHistory(), nil
	case DriverSQLite:
		return NewSQLiteHistory(ctx, cfg.DSN, cfg.OwnerColumn)
	case DriverPostgres:
		return NewPostgresHistory(ctx, PostgresConfig{DSN: cfg.DSN, OwnerColumn: cfg.OwnerColumn})
	case DriverNone, "":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

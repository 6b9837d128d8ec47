// Package store persists the merged result table to a relational database,
// either a local SQLite file or Postgres.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/statemetrics/internal/config"
	"github.com/sells-group/statemetrics/internal/model"
)

// Store defines the persistence interface for the result table.
type Store interface {
	// Migrate creates the schema if needed.
	Migrate(ctx context.Context) error

	// WriteResult replaces any prior run's rows with the given table.
	WriteResult(ctx context.Context, table *model.ResultTable) error

	// Close releases the underlying connection. Safe after failure paths.
	Close() error
}

// New creates a Store for the configured driver.
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

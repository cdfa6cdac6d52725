package dataset

import (
	"context"
	"fmt"

	"github.com/compliancelens/backend/internal/domain"
)

// Supported dataset drivers
const (
	DriverCSV      = "csv"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects and locates a dataset
type Config struct {
	Driver string
	Path   string // CSV file or sqlite database file
	DSN    string // postgres connection string
	Table  string
}

// Source is a dataset that holds resources until closed
type Source interface {
	domain.DatasetSource
	Close() error
}

// Open returns the source configured by cfg
func Open(ctx context.Context, cfg Config) (Source, error) {
	switch cfg.Driver {
	case DriverCSV, "":
		return NewCSVSource(cfg.Path), nil
	case DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = cfg.Path
		}
		return OpenSQL(ctx, DriverSQLite, dsn, cfg.Table)
	case DriverPostgres:
		return OpenSQL(ctx, DriverPostgres, cfg.DSN, cfg.Table)
	default:
		return nil, fmt.Errorf("%w: unknown dataset driver %q", domain.ErrInvalidRequest, cfg.Driver)
	}
}

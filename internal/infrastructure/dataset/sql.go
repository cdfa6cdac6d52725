package dataset

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/compliancelens/backend/internal/domain"
)

const (
	// DefaultMaxOpenConns is the default maximum number of open connections
	DefaultMaxOpenConns = 5
	// DefaultConnMaxLifetime is the default maximum connection lifetime
	DefaultConnMaxLifetime = 5 * time.Minute
	// DefaultPingTimeout is the default timeout for ping operations
	DefaultPingTimeout = 5 * time.Second
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLSource reads records from a products table
type SQLSource struct {
	db    *sqlx.DB
	table string
}

// OpenSQL connects to a sqlite or postgres database holding the products table
func OpenSQL(ctx context.Context, driver, dsn, table string) (*SQLSource, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("%w: invalid table name %q", domain.ErrInvalidRequest, table)
	}
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("%w: unsupported SQL driver %q", domain.ErrInvalidRequest, driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrDatasetUnavailable, driver, err)
	}
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, DefaultPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping %s: %v", domain.ErrDatasetUnavailable, driver, err)
	}

	return NewSQLSource(db, table), nil
}

// NewSQLSource wraps an existing connection. The table name must already be validated.
func NewSQLSource(db *sqlx.DB, table string) *SQLSource {
	return &SQLSource{db: db, table: table}
}

// Load reads every row of the table
func (s *SQLSource) Load(ctx context.Context) ([]domain.ProductRecord, error) {
	query := fmt.Sprintf(
		"SELECT %s, %s, %s, %s, %s, %s FROM %s",
		ColumnTitle, ColumnMRP, ColumnExpiry, ColumnWeight, ColumnCategory, ColumnIssues, s.table,
	)

	var rows []productRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", domain.ErrDatasetUnavailable, s.table, err)
	}

	records := make([]domain.ProductRecord, len(rows))
	for i, row := range rows {
		records[i] = row.toRecord(rowID(i))
	}

	log.Info().Str("table", s.table).Int("records", len(records)).Msg("Loaded SQL dataset")
	return records, nil
}

// Close closes the database connection
func (s *SQLSource) Close() error {
	return s.db.Close()
}

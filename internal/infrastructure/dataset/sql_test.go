package dataset

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compliancelens/backend/internal/domain"
)

func seedSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.db")

	db, err := sqlx.Open(DriverSQLite, path)
	require.NoError(t, err)
	defer db.Close()

	db.MustExec(`CREATE TABLE products (
		id INTEGER PRIMARY KEY,
		title TEXT,
		mrp REAL,
		expiry TEXT,
		weight TEXT,
		category TEXT,
		issues TEXT
	)`)
	db.MustExec(`INSERT INTO products (title, mrp, expiry, weight, category, issues) VALUES
		('Masala Chips', 20, '12/2024', '50 g', 'Snacks', 'OK'),
		(NULL, NULL, NULL, NULL, NULL, 'MRP Missing'),
		('Cola', -3, '  ', '1.25 l', 'Beverages', NULL)`)
	return path
}

func TestSQLSource_LoadSQLite(t *testing.T) {
	path := seedSQLite(t)

	source, err := Open(context.Background(), Config{Driver: DriverSQLite, Path: path, Table: "products"})
	require.NoError(t, err)
	defer source.Close()

	records, err := source.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "1", records[0].ID)
	assert.Equal(t, "Masala Chips", *records[0].Title)
	assert.Equal(t, 20.0, *records[0].MRP)
	assert.Equal(t, domain.IssuesOK, records[0].Issues)

	assert.Nil(t, records[1].Title)
	assert.Nil(t, records[1].MRP)
	assert.Nil(t, records[1].Category)

	assert.Nil(t, records[2].MRP, "negative MRP is missing")
	assert.Nil(t, records[2].Expiry, "blank expiry is missing")
	assert.Equal(t, "", records[2].Issues)
}

func TestOpenSQL_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := OpenSQL(ctx, DriverSQLite, ":memory:", "products; DROP TABLE x")
	assert.True(t, errors.Is(err, domain.ErrInvalidRequest))

	_, err = OpenSQL(ctx, "mysql", "dsn", "products")
	assert.True(t, errors.Is(err, domain.ErrInvalidRequest))
}

func TestSQLSource_MissingTable(t *testing.T) {
	path := seedSQLite(t)

	source, err := Open(context.Background(), Config{Driver: DriverSQLite, Path: path, Table: "absent"})
	require.NoError(t, err)
	defer source.Close()

	_, err = source.Load(context.Background())
	assert.True(t, errors.Is(err, domain.ErrDatasetUnavailable))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "parquet"})
	assert.True(t, errors.Is(err, domain.ErrInvalidRequest))
}

package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/compliancelens/backend/internal/domain"
)

// CSVSource reads records from a CSV export with a header row
type CSVSource struct {
	path string
}

// NewCSVSource creates a source for the CSV file at path
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Load reads every row of the file
func (s *CSVSource) Load(ctx context.Context) ([]domain.ProductRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDatasetUnavailable, err)
	}
	defer f.Close()

	records, err := ReadCSV(ctx, f)
	if err != nil {
		return nil, err
	}

	log.Info().Str("path", s.path).Int("records", len(records)).Msg("Loaded CSV dataset")
	return records, nil
}

// Close is a no-op for file sources
func (s *CSVSource) Close() error {
	return nil
}

// ReadCSV parses product rows from r. Column order is taken from the header;
// unknown columns are ignored and every column but issues is optional.
func ReadCSV(ctx context.Context, r io.Reader) ([]domain.ProductRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header row", domain.ErrDatasetUnavailable)
		}
		return nil, fmt.Errorf("%w: read header: %v", domain.ErrDatasetUnavailable, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	if _, ok := columns[ColumnIssues]; !ok {
		return nil, fmt.Errorf("%w: header has no %q column", domain.ErrDatasetUnavailable, ColumnIssues)
	}

	cell := func(row []string, column string) string {
		i, ok := columns[column]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []domain.ProductRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", domain.ErrDatasetUnavailable, len(records)+1, err)
		}

		id := rowID(len(records))
		records = append(records, domain.ProductRecord{
			ID:       id,
			Title:    optionalString(cell(row, ColumnTitle)),
			MRP:      parseMRP(id, cell(row, ColumnMRP)),
			Expiry:   optionalString(cell(row, ColumnExpiry)),
			Weight:   optionalString(cell(row, ColumnWeight)),
			Category: optionalString(cell(row, ColumnCategory)),
			Issues:   issuesText(cell(row, ColumnIssues)),
		})
	}

	return records, nil
}

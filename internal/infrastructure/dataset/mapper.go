// Package dataset loads product records from CSV exports or SQL tables.
package dataset

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/compliancelens/backend/internal/domain"
)

// Column names shared by the CSV header and the SQL table
const (
	ColumnTitle    = "title"
	ColumnMRP      = "mrp"
	ColumnExpiry   = "expiry"
	ColumnWeight   = "weight"
	ColumnCategory = "category"
	ColumnIssues   = "issues"
)

// Cell values treated as missing, matched case-insensitively after trimming
var missingMarkers = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
	"none": {},
	"#n/a": {},
	"<na>": {},
}

// rowID numbers records from 1 in source order
func rowID(index int) string {
	return strconv.Itoa(index + 1)
}

// optionalString returns nil for missing cells and the trimmed value otherwise
func optionalString(raw string) *string {
	value := strings.TrimSpace(raw)
	if _, missing := missingMarkers[strings.ToLower(value)]; missing {
		return nil
	}
	return &value
}

// parseMRP accepts plain numbers as well as display prices such as "₹1,450.00".
// Values that do not parse or are negative are treated as missing.
func parseMRP(id, raw string) *float64 {
	value := optionalString(raw)
	if value == nil {
		return nil
	}

	cleaned := strings.NewReplacer("₹", "", ",", "", "Rs.", "", "Rs", "").Replace(*value)
	mrp, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
	if err != nil || !domain.ValidMRP(mrp) {
		log.Warn().Str("record_id", id).Str("mrp", *value).Msg("Ignoring unparseable MRP")
		return nil
	}
	return &mrp
}

// issuesText keeps the issue description verbatim apart from surrounding whitespace
func issuesText(raw string) string {
	value := optionalString(raw)
	if value == nil {
		return ""
	}
	return *value
}

// productRow is the SQL shape of one product
type productRow struct {
	Title    sql.NullString  `db:"title"`
	MRP      sql.NullFloat64 `db:"mrp"`
	Expiry   sql.NullString  `db:"expiry"`
	Weight   sql.NullString  `db:"weight"`
	Category sql.NullString  `db:"category"`
	Issues   sql.NullString  `db:"issues"`
}

// toRecord converts a scanned row into a domain record
func (r productRow) toRecord(id string) domain.ProductRecord {
	record := domain.ProductRecord{
		ID:       id,
		Title:    nullString(r.Title),
		Expiry:   nullString(r.Expiry),
		Weight:   nullString(r.Weight),
		Category: nullString(r.Category),
		Issues:   issuesText(r.Issues.String),
	}
	if r.MRP.Valid && domain.ValidMRP(r.MRP.Float64) {
		record.MRP = domain.FloatPtr(r.MRP.Float64)
	}
	return record
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return optionalString(s.String)
}

package domain

import (
	"fmt"
	"math"
)

// IssuesOK is the issues value of a record with no recorded defect
const IssuesOK = "OK"

// ProductRecord represents a raw retail product row as scraped or uploaded.
// Every field except Issues may be absent.
type ProductRecord struct {
	ID       string   `json:"id,omitempty"`
	Title    *string  `json:"title"`
	MRP      *float64 `json:"mrp"`
	Expiry   *string  `json:"expiry"`   // "MM/YYYY"
	Weight   *string  `json:"weight"`   // free form, e.g. "250 g", "1.5kg"
	Category *string  `json:"category"`
	Issues   string   `json:"issues"`
}

// Validate checks the invariants every ingestion path must agree on
func (r ProductRecord) Validate() error {
	if r.MRP != nil && !ValidMRP(*r.MRP) {
		return fmt.Errorf("%w: mrp must be a non-negative number, got %v", ErrInvalidRequest, *r.MRP)
	}
	return nil
}

// ValidMRP reports whether v is a finite, non-negative price
func ValidMRP(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

// StringPtr returns a pointer to s, for building records in code and tests
func StringPtr(s string) *string {
	return &s
}

// FloatPtr returns a pointer to f
func FloatPtr(f float64) *float64 {
	return &f
}

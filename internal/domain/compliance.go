package domain

import "strings"

// FeatureNames lists the classifier inputs in vector order.
// Changing the order or length requires refitting the bundle.
var FeatureNames = []string{
	"mrp_present",
	"expiry_present",
	"weight_present",
	"price_range",
	"weight_range",
	"expiry_range",
	"category_encoded",
}

// FeatureCount is the length of every feature vector
const FeatureCount = 7

// DerivedFeatures holds everything computed from a ProductRecord before prediction
type DerivedFeatures struct {
	MRPPresent     bool    `json:"mrpPresent"`
	ExpiryPresent  bool    `json:"expiryPresent"`
	WeightPresent  bool    `json:"weightPresent"`
	WeightStd      float64 `json:"weightStd"`      // grams
	MonthsToExpiry int     `json:"monthsToExpiry"` // -1 when missing or unparseable
	ExpiryParsed   bool    `json:"expiryParsed"`   // matched MM/YYYY
	ExpiryValid    bool    `json:"expiryValid"`    // parsed and in the future
	PriceBin       int     `json:"priceBin"`
	WeightBin      int     `json:"weightBin"`
	ExpiryBin      int     `json:"expiryBin"`
	CategoryCode   int     `json:"categoryCode"`
}

// Vector returns the classifier input in FeatureNames order
func (f DerivedFeatures) Vector() []float64 {
	return []float64{
		boolToFloat(f.MRPPresent),
		boolToFloat(f.ExpiryPresent),
		boolToFloat(f.WeightPresent),
		float64(f.PriceBin),
		float64(f.WeightBin),
		float64(f.ExpiryBin),
		float64(f.CategoryCode),
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// ComplianceStatus is the three-tier compliance label
type ComplianceStatus string

const (
	StatusCompliant        ComplianceStatus = "Compliant"
	StatusPartialCompliant ComplianceStatus = "Partial-Compliant"
	StatusNonCompliant     ComplianceStatus = "Non-Compliant"
)

// Class returns the lowercase form used as a CSS class by the dashboard
func (s ComplianceStatus) Class() string {
	return strings.ToLower(string(s))
}

// ComplianceResult is the outcome of classifying one record
type ComplianceResult struct {
	RecordID    string           `json:"recordId,omitempty"`
	Probability float64          `json:"probability"` // 0-1, probability the record is compliant
	Status      ComplianceStatus `json:"complianceStatus"`
}

// Classification pairs the derived features with the result they produced
type Classification struct {
	Features DerivedFeatures  `json:"features"`
	Result   ComplianceResult `json:"result"`
}

// BatchItem is one row of a batch run. Exactly one of Classification and Err is set.
type BatchItem struct {
	Index          int
	RecordID       string
	Classification *Classification
	Err            error
}

// OK reports whether the row was classified
func (b BatchItem) OK() bool {
	return b.Err == nil && b.Classification != nil
}

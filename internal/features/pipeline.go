package features

import (
	"fmt"

	"github.com/compliancelens/backend/internal/domain"
)

// State is the fitted part of the pipeline persisted in a bundle
type State struct {
	Price      Binner          `json:"price"`
	Weight     Binner          `json:"weight"`
	Expiry     Binner          `json:"expiry"`
	Categories CategoryEncoder `json:"categories"`
}

// Validate checks bin counts, cut ordering and that at least one category exists
func (s State) Validate() error {
	if err := s.Price.Validate(PriceBins); err != nil {
		return fmt.Errorf("price binner: %w", err)
	}
	if err := s.Weight.Validate(WeightBins); err != nil {
		return fmt.Errorf("weight binner: %w", err)
	}
	if err := s.Expiry.Validate(ExpiryBins); err != nil {
		return fmt.Errorf("expiry binner: %w", err)
	}
	if s.Categories.Len() == 0 {
		return fmt.Errorf("category encoder has no classes")
	}
	return nil
}

// FeatureBounds returns the largest admissible value of each vector position
func (s State) FeatureBounds() []float64 {
	return []float64{
		1, 1, 1,
		float64(s.Price.Bins() - 1),
		float64(s.Weight.Bins() - 1),
		float64(s.Expiry.Bins() - 1),
		float64(s.Categories.Len() - 1),
	}
}

// Measurements are the unbinned per-record values
type Measurements struct {
	MRPPresent     bool
	ExpiryPresent  bool
	WeightPresent  bool
	MRP            float64 // 0 when absent
	WeightStd      float64
	MonthsToExpiry int
	ExpiryParsed   bool
	ExpiryValid    bool
}

// Measure derives presence flags and imputed numeric values from a record.
// Presence reflects the raw field, independent of whether it parses.
func Measure(record domain.ProductRecord, analyzer ExpiryAnalyzer) Measurements {
	m := Measurements{
		MRPPresent:    record.MRP != nil,
		ExpiryPresent: record.Expiry != nil,
		WeightPresent: record.Weight != nil,
		WeightStd:     NormalizeWeight(record.Weight),
	}
	if record.MRP != nil {
		m.MRP = *record.MRP
	}
	if record.Expiry != nil {
		_, _, m.ExpiryParsed = parseMonthYear(*record.Expiry)
	}
	m.ExpiryValid, m.MonthsToExpiry = analyzer.Analyze(record.Expiry)
	return m
}

// Pipeline applies a fitted State to records. It is safe for concurrent use.
type Pipeline struct {
	state    State
	analyzer ExpiryAnalyzer
}

// NewPipeline wraps a validated State
func NewPipeline(state State, analyzer ExpiryAnalyzer) (*Pipeline, error) {
	if err := state.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidBundle, err)
	}
	return &Pipeline{state: state, analyzer: analyzer}, nil
}

// Fit learns price and weight cut points and the category encoding from
// records. Missing prices and weights are imputed to 0 before fitting.
func Fit(records []domain.ProductRecord, analyzer ExpiryAnalyzer) (*Pipeline, error) {
	if len(records) == 0 {
		return nil, domain.ErrEmptyDataset
	}

	prices := make([]float64, len(records))
	weights := make([]float64, len(records))
	categories := make([]*string, len(records))
	for i, record := range records {
		m := Measure(record, analyzer)
		prices[i] = m.MRP
		weights[i] = m.WeightStd
		categories[i] = record.Category
	}

	price, err := FitQuantiles(prices, PriceBins)
	if err != nil {
		return nil, fmt.Errorf("fit price bins: %w", err)
	}
	weight, err := FitQuantiles(weights, WeightBins)
	if err != nil {
		return nil, fmt.Errorf("fit weight bins: %w", err)
	}

	return NewPipeline(State{
		Price:      price,
		Weight:     weight,
		Expiry:     ExpiryBinner(),
		Categories: FitCategoryEncoder(categories),
	}, analyzer)
}

// State returns the fitted parameters
func (p *Pipeline) State() State {
	return p.state
}

// Measure returns the unbinned values for a record using the pipeline's clock
func (p *Pipeline) Measure(record domain.ProductRecord) Measurements {
	return Measure(record, p.analyzer)
}

// Derive computes the features for one record. The only error is an
// *domain.UnknownCategoryError.
func (p *Pipeline) Derive(record domain.ProductRecord) (domain.DerivedFeatures, error) {
	m := Measure(record, p.analyzer)

	code, err := p.state.Categories.Encode(record.Category)
	if err != nil {
		return domain.DerivedFeatures{}, err
	}

	return domain.DerivedFeatures{
		MRPPresent:     m.MRPPresent,
		ExpiryPresent:  m.ExpiryPresent,
		WeightPresent:  m.WeightPresent,
		WeightStd:      m.WeightStd,
		MonthsToExpiry: m.MonthsToExpiry,
		ExpiryParsed:   m.ExpiryParsed,
		ExpiryValid:    m.ExpiryValid,
		PriceBin:       p.state.Price.Bin(m.MRP),
		WeightBin:      p.state.Weight.Bin(m.WeightStd),
		ExpiryBin:      p.state.Expiry.Bin(float64(m.MonthsToExpiry)),
		CategoryCode:   code,
	}, nil
}

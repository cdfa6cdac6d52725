package model

import (
	"fmt"
	"time"

	"github.com/compliancelens/backend/internal/domain"
	"github.com/compliancelens/backend/internal/features"
)

// Bundle is everything fit offline and reused unchanged when serving:
// binning boundaries, the category encoding and the predictor weights.
type Bundle struct {
	Version   string         `json:"version"`
	CreatedAt time.Time      `json:"createdAt"`
	Features  features.State `json:"features"`
	Model     *Logistic      `json:"model"`
	Report    Report         `json:"report"`
}

// Report summarizes how a bundle was fit
type Report struct {
	Records     int                 `json:"records"`
	TrainSize   int                 `json:"trainSize"`
	TestSize    int                 `json:"testSize"`
	Accuracy    float64             `json:"accuracy"` // on the held-out split, 0-1
	Seed        int64               `json:"seed"`
	Importances []FeatureImportance `json:"importances"`
}

// FeatureImportance is one feature's share of the model's weight
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// Validate checks that the pipeline state and the model agree on the vector layout
func (b *Bundle) Validate() error {
	if b.Version == "" {
		return fmt.Errorf("%w: missing version", domain.ErrInvalidBundle)
	}
	if err := b.Features.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidBundle, err)
	}
	if err := b.Model.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidBundle, err)
	}
	if len(b.Model.Weights) != domain.FeatureCount {
		return fmt.Errorf("%w: model expects %d features, pipeline produces %d",
			domain.ErrInvalidBundle, len(b.Model.Weights), domain.FeatureCount)
	}
	return nil
}

// Pipeline builds the serving pipeline from the bundle's fitted state
func (b *Bundle) Pipeline(analyzer features.ExpiryAnalyzer) (*features.Pipeline, error) {
	return features.NewPipeline(b.Features, analyzer)
}

// Summary is the listing view of a stored bundle
type Summary struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	Records   int       `json:"records"`
	Accuracy  float64   `json:"accuracy"`
}

// Summarize returns the listing view
func (b *Bundle) Summarize() Summary {
	return Summary{
		Version:   b.Version,
		CreatedAt: b.CreatedAt,
		Records:   b.Report.Records,
		Accuracy:  b.Report.Accuracy,
	}
}

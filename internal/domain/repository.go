package domain

import "context"

// Predictor is the opaque probabilistic classifier.
// PredictProbability returns the probability that the record behind vector is
// compliant, or a *ModelInputError when the vector does not fit the model.
type Predictor interface {
	PredictProbability(ctx context.Context, vector []float64) (float64, error)
}

// DatasetSource yields product records in a stable order
type DatasetSource interface {
	Load(ctx context.Context) ([]ProductRecord, error)
}

// Package model holds the local compliance predictor and the fitted bundle
// that ties it to the feature pipeline it was trained against.
package model

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/compliancelens/backend/internal/domain"
)

// TrainConfig controls logistic regression fitting
type TrainConfig struct {
	Epochs       int
	LearningRate float64
	L2           float64
}

func (c TrainConfig) withDefaults() TrainConfig {
	if c.Epochs <= 0 {
		c.Epochs = 500
	}
	if c.LearningRate <= 0 {
		c.LearningRate = 0.5
	}
	if c.L2 < 0 {
		c.L2 = 0
	}
	return c
}

// Logistic is a class-balanced logistic regression over standardized features.
// Bounds holds the largest admissible value per feature; vectors outside the
// fitted domain are rejected rather than extrapolated.
type Logistic struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	Mean    []float64 `json:"mean"`
	Scale   []float64 `json:"scale"`
	Bounds  []float64 `json:"bounds"`
}

// TrainLogistic fits a model on rows x with binary labels y (1 = compliant).
func TrainLogistic(x [][]float64, y []int, bounds []float64, cfg TrainConfig) (*Logistic, error) {
	if len(x) == 0 {
		return nil, domain.ErrEmptyDataset
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("have %d rows but %d labels", len(x), len(y))
	}
	width := len(bounds)
	for i, row := range x {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d features, want %d", i, len(row), width)
		}
		if y[i] != 0 && y[i] != 1 {
			return nil, fmt.Errorf("label %d of row %d is not binary", y[i], i)
		}
	}
	cfg = cfg.withDefaults()

	mean, scale := standardization(x, width)
	m := &Logistic{
		Weights: make([]float64, width),
		Mean:    mean,
		Scale:   scale,
		Bounds:  append([]float64(nil), bounds...),
	}

	classWeight := balancedClassWeights(y)
	z := make([]float64, width)
	grad := make([]float64, width)
	n := float64(len(x))

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		for j := range grad {
			grad[j] = 0
		}
		var gradBias float64

		for i, row := range x {
			m.standardize(row, z)
			diff := (sigmoid(m.logit(z)) - float64(y[i])) * classWeight[y[i]]
			for j := range grad {
				grad[j] += diff * z[j]
			}
			gradBias += diff
		}

		for j := range m.Weights {
			m.Weights[j] -= cfg.LearningRate * (grad[j]/n + cfg.L2*m.Weights[j])
		}
		m.Bias -= cfg.LearningRate * gradBias / n
	}

	return m, nil
}

// PredictProbability implements domain.Predictor
func (m *Logistic) PredictProbability(ctx context.Context, vector []float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := m.checkInput(vector); err != nil {
		return 0, err
	}
	z := make([]float64, len(vector))
	m.standardize(vector, z)
	return sigmoid(m.logit(z)), nil
}

// Importances returns each feature's share of the absolute standardized weight
func (m *Logistic) Importances() []float64 {
	out := make([]float64, len(m.Weights))
	var total float64
	for _, w := range m.Weights {
		total += math.Abs(w)
	}
	if total == 0 {
		return out
	}
	for i, w := range m.Weights {
		out[i] = math.Abs(w) / total
	}
	return out
}

// Validate checks internal consistency after loading
func (m *Logistic) Validate() error {
	if m == nil {
		return errors.New("model is missing")
	}
	width := len(m.Weights)
	if width == 0 {
		return errors.New("model has no weights")
	}
	if len(m.Mean) != width || len(m.Scale) != width || len(m.Bounds) != width {
		return fmt.Errorf("model parameter lengths disagree: weights=%d mean=%d scale=%d bounds=%d",
			width, len(m.Mean), len(m.Scale), len(m.Bounds))
	}
	for i, s := range m.Scale {
		if s <= 0 {
			return fmt.Errorf("scale %d is not positive", i)
		}
	}
	return nil
}

func (m *Logistic) checkInput(vector []float64) error {
	if len(vector) != len(m.Weights) {
		return &domain.ModelInputError{
			Reason: fmt.Sprintf("expected %d features, got %d", len(m.Weights), len(vector)),
		}
	}
	for i, v := range vector {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > m.Bounds[i] || v != math.Trunc(v) {
			return &domain.ModelInputError{
				Reason: fmt.Sprintf("feature %s=%g outside fitted domain [0, %g]", featureName(i), v, m.Bounds[i]),
			}
		}
	}
	return nil
}

func (m *Logistic) standardize(row, dst []float64) {
	for j, v := range row {
		dst[j] = (v - m.Mean[j]) / m.Scale[j]
	}
}

func (m *Logistic) logit(z []float64) float64 {
	s := m.Bias
	for j, v := range z {
		s += m.Weights[j] * v
	}
	return s
}

func standardization(x [][]float64, width int) (mean, scale []float64) {
	mean = make([]float64, width)
	scale = make([]float64, width)
	n := float64(len(x))
	for _, row := range x {
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= n
	}
	for _, row := range x {
		for j, v := range row {
			d := v - mean[j]
			scale[j] += d * d
		}
	}
	for j := range scale {
		scale[j] = math.Sqrt(scale[j] / n)
		if scale[j] == 0 {
			scale[j] = 1
		}
	}
	return mean, scale
}

// balancedClassWeights weights each class by n / (2 * count)
func balancedClassWeights(y []int) [2]float64 {
	var counts [2]float64
	for _, label := range y {
		counts[label]++
	}
	n := float64(len(y))
	var w [2]float64
	for c := range w {
		if counts[c] > 0 {
			w[c] = n / (2 * counts[c])
		}
	}
	return w
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func featureName(i int) string {
	if i >= 0 && i < len(domain.FeatureNames) {
		return domain.FeatureNames[i]
	}
	return fmt.Sprintf("#%d", i)
}

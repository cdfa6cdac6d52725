package usecase

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/compliancelens/backend/internal/domain"
	"github.com/compliancelens/backend/internal/features"
	"github.com/compliancelens/backend/internal/model"
)

// BundleWriter persists fitted bundles
type BundleWriter interface {
	Save(ctx context.Context, bundle *model.Bundle) error
}

// FitConfig holds configuration for a fitting run
type FitConfig struct {
	TestFraction float64 // share of records held out for accuracy, default 0.2
	Seed         int64   // shuffle seed, default 42
	Train        model.TrainConfig
}

func (c FitConfig) withDefaults() FitConfig {
	if c.TestFraction <= 0 || c.TestFraction >= 1 {
		c.TestFraction = 0.2
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	return c
}

// TrainingService fits a bundle from a labelled dataset
type TrainingService struct {
	store    BundleWriter
	analyzer features.ExpiryAnalyzer
	now      func() time.Time
}

// NewTrainingService creates a training service. store may be nil to skip persistence.
func NewTrainingService(store BundleWriter, analyzer features.ExpiryAnalyzer) *TrainingService {
	return &TrainingService{
		store:    store,
		analyzer: analyzer,
		now:      time.Now,
	}
}

// Fit learns the feature pipeline and the predictor from records, evaluates
// the predictor on a held-out split and stores the resulting bundle.
// A record is a positive example exactly when its issues field is "OK".
func (s *TrainingService) Fit(ctx context.Context, records []domain.ProductRecord, config FitConfig) (*model.Bundle, error) {
	config = config.withDefaults()
	if len(records) == 0 {
		return nil, domain.ErrEmptyDataset
	}

	pipeline, err := features.Fit(records, s.analyzer)
	if err != nil {
		return nil, fmt.Errorf("fit feature pipeline: %w", err)
	}
	state := pipeline.State()

	x := make([][]float64, len(records))
	y := make([]int, len(records))
	for i, record := range records {
		f, err := pipeline.Derive(record)
		if err != nil {
			return nil, fmt.Errorf("derive features for row %d: %w", i, err)
		}
		x[i] = f.Vector()
		if record.Issues == domain.IssuesOK {
			y[i] = 1
		}
	}

	trainIdx, testIdx := splitIndices(len(records), config.TestFraction, config.Seed)
	trainX, trainY := selectRows(x, y, trainIdx)
	testX, testY := selectRows(x, y, testIdx)

	log.Info().
		Int("records", len(records)).
		Int("train", len(trainIdx)).
		Int("test", len(testIdx)).
		Int("categories", state.Categories.Len()).
		Msg("Training compliance model")

	m, err := model.TrainLogistic(trainX, trainY, state.FeatureBounds(), config.Train)
	if err != nil {
		return nil, fmt.Errorf("train model: %w", err)
	}

	accuracy, err := evaluate(ctx, m, testX, testY)
	if err != nil {
		return nil, fmt.Errorf("evaluate model: %w", err)
	}

	bundle := &model.Bundle{
		Version:   uuid.NewString(),
		CreatedAt: s.now().UTC(),
		Features:  state,
		Model:     m,
		Report: model.Report{
			Records:     len(records),
			TrainSize:   len(trainIdx),
			TestSize:    len(testIdx),
			Accuracy:    accuracy,
			Seed:        config.Seed,
			Importances: importances(m),
		},
	}
	if err := bundle.Validate(); err != nil {
		return nil, err
	}

	if s.store != nil {
		if err := s.store.Save(ctx, bundle); err != nil {
			return nil, fmt.Errorf("save bundle: %w", err)
		}
	}

	log.Info().
		Str("bundle_version", bundle.Version).
		Float64("accuracy", accuracy).
		Msg("Compliance model trained")

	return bundle, nil
}

// splitIndices shuffles 0..n-1 and holds out ceil(n*fraction) rows for testing,
// always keeping at least one training row
func splitIndices(n int, fraction float64, seed int64) (train, test []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	testN := int(math.Ceil(float64(n) * fraction))
	if testN >= n {
		testN = n - 1
	}
	return perm[testN:], perm[:testN]
}

func selectRows(x [][]float64, y []int, idx []int) ([][]float64, []int) {
	sx := make([][]float64, len(idx))
	sy := make([]int, len(idx))
	for i, j := range idx {
		sx[i] = x[j]
		sy[i] = y[j]
	}
	return sx, sy
}

// evaluate returns the share of rows whose thresholded prediction matches the label
func evaluate(ctx context.Context, p domain.Predictor, x [][]float64, y []int) (float64, error) {
	if len(x) == 0 {
		return 0, nil
	}
	correct := 0
	for i, row := range x {
		prob, err := p.PredictProbability(ctx, row)
		if err != nil {
			return 0, err
		}
		predicted := 0
		if prob >= 0.5 {
			predicted = 1
		}
		if predicted == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(x)), nil
}

func importances(m *model.Logistic) []model.FeatureImportance {
	values := m.Importances()
	out := make([]model.FeatureImportance, len(values))
	for i, v := range values {
		out[i] = model.FeatureImportance{Feature: domain.FeatureNames[i], Importance: v}
	}
	return out
}

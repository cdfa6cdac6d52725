package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/compliancelens/backend/internal/domain"
	"github.com/compliancelens/backend/internal/features"
	"github.com/compliancelens/backend/internal/metrics"
)

// ComplianceServiceConfig holds configuration for the compliance service
type ComplianceServiceConfig struct {
	Workers int // parallel records in a batch
	Metrics *metrics.Metrics
}

// ComplianceService derives features, calls the predictor and labels records.
// It holds only immutable state and is shared by all request handlers.
type ComplianceService struct {
	pipeline  *features.Pipeline
	predictor domain.Predictor
	metrics   *metrics.Metrics
	workers   int
}

// NewComplianceService creates a compliance service with dependencies
func NewComplianceService(
	pipeline *features.Pipeline,
	predictor domain.Predictor,
	config ComplianceServiceConfig,
) *ComplianceService {
	workers := config.Workers
	if workers <= 0 {
		workers = 4
	}

	return &ComplianceService{
		pipeline:  pipeline,
		predictor: predictor,
		metrics:   config.Metrics,
		workers:   workers,
	}
}

// Pipeline returns the fitted feature pipeline
func (s *ComplianceService) Pipeline() *features.Pipeline {
	return s.pipeline
}

// DeriveFeatures computes the classifier input for a record.
// It fails on an invalid record or an unknown category.
func (s *ComplianceService) DeriveFeatures(record domain.ProductRecord) (domain.DerivedFeatures, error) {
	if err := record.Validate(); err != nil {
		return domain.DerivedFeatures{}, recordError(record, err)
	}
	f, err := s.pipeline.Derive(record)
	if err != nil {
		return domain.DerivedFeatures{}, recordError(record, err)
	}
	return f, nil
}

// Classify returns the compliance result for one record
func (s *ComplianceService) Classify(ctx context.Context, record domain.ProductRecord) (*domain.ComplianceResult, error) {
	c, err := s.Evaluate(ctx, record)
	if err != nil {
		return nil, err
	}
	return &c.Result, nil
}

// Evaluate returns both the derived features and the compliance result.
// Flow: derive features -> predict probability -> label
func (s *ComplianceService) Evaluate(ctx context.Context, record domain.ProductRecord) (*domain.Classification, error) {
	f, err := s.DeriveFeatures(record)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			s.metrics.ObserveFailure(metrics.ReasonInvalidRecord)
		} else {
			s.metrics.ObserveFailure(metrics.ReasonUnknownCategory)
		}
		return nil, err
	}

	start := time.Now()
	probability, err := s.predictor.PredictProbability(ctx, f.Vector())
	if err != nil {
		var inputErr *domain.ModelInputError
		if errors.As(err, &inputErr) {
			s.metrics.ObserveFailure(metrics.ReasonModelInput)
			return nil, &domain.ModelInputError{RecordID: record.ID, Reason: inputErr.Reason}
		}
		s.metrics.ObserveFailure(metrics.ReasonPredictor)
		return nil, recordError(record, err)
	}

	status := Label(record.Issues, probability)
	s.metrics.ObserveClassification(string(status), probability, time.Since(start))

	return &domain.Classification{
		Features: f,
		Result: domain.ComplianceResult{
			RecordID:    record.ID,
			Probability: probability,
			Status:      status,
		},
	}, nil
}

// ClassifyBatch classifies every record and returns one item per record in
// input order. A failing record is reported in its item and does not stop the
// batch; only cancellation of ctx aborts the run.
func (s *ComplianceService) ClassifyBatch(ctx context.Context, records []domain.ProductRecord) ([]domain.BatchItem, error) {
	items := make([]domain.BatchItem, len(records))
	s.metrics.ObserveBatch(len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			record := records[i]
			item := domain.BatchItem{Index: i, RecordID: record.ID}

			c, err := s.Evaluate(gctx, record)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				item.Err = err
				log.Debug().Err(err).Str("record_id", record.ID).Int("index", i).Msg("record not classified")
			} else {
				item.Classification = c
			}
			items[i] = item
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch classification aborted: %w", err)
	}
	return items, nil
}

// recordError attaches the record identifier to an error
func recordError(record domain.ProductRecord, err error) error {
	if record.ID == "" {
		return err
	}
	return fmt.Errorf("record %s: %w", record.ID, err)
}

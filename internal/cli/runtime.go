package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/compliancelens/backend/config"
	"github.com/compliancelens/backend/internal/domain"
	"github.com/compliancelens/backend/internal/features"
	"github.com/compliancelens/backend/internal/infrastructure/bundlestore"
	"github.com/compliancelens/backend/internal/infrastructure/dataset"
	"github.com/compliancelens/backend/internal/infrastructure/modelserver"
	"github.com/compliancelens/backend/internal/metrics"
	"github.com/compliancelens/backend/internal/model"
	"github.com/compliancelens/backend/internal/usecase"
)

// runtime is the immutable serving state built once from a stored bundle
type runtime struct {
	bundle     *model.Bundle
	compliance *usecase.ComplianceService
}

// buildRuntime loads the configured bundle and wires the predictor behind it
func buildRuntime(ctx context.Context, cfg *config.Config, store *bundlestore.Store, m *metrics.Metrics) (*runtime, error) {
	bundle, err := store.Load(ctx, cfg.Model.BundleVersion)
	if err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	}

	pipeline, err := bundle.Pipeline(features.NewExpiryAnalyzer(nil))
	if err != nil {
		return nil, err
	}

	predictor := newPredictor(cfg, bundle)
	compliance := usecase.NewComplianceService(pipeline, predictor, usecase.ComplianceServiceConfig{
		Workers: cfg.Batch.Workers,
		Metrics: m,
	})

	log.Info().
		Str("bundle_version", bundle.Version).
		Str("predictor", cfg.Model.Predictor).
		Strs("categories", bundle.Features.Categories.Classes()).
		Float64("accuracy", bundle.Report.Accuracy).
		Msg("Compliance model loaded")

	return &runtime{bundle: bundle, compliance: compliance}, nil
}

func newPredictor(cfg *config.Config, bundle *model.Bundle) domain.Predictor {
	if cfg.Model.Predictor != config.PredictorRemote {
		return bundle.Model
	}

	client := modelserver.NewClient(cfg.Model.RemoteURL, cfg.Model.RemoteTimeout, cfg.Model.RemoteRate)
	if cfg.Server.Environment == "development" {
		client.SetDebug(true)
	}
	log.Info().Str("url", cfg.Model.RemoteURL).Msg("Using remote model server")
	return client
}

func openStore(cfg *config.Config) (*bundlestore.Store, error) {
	return bundlestore.Open(cfg.Model.BundlePath)
}

// datasetConfig returns the configured dataset, or the CSV file at override when given
func datasetConfig(cfg *config.Config, override string) dataset.Config {
	if override != "" {
		return dataset.Config{Driver: dataset.DriverCSV, Path: override}
	}
	return dataset.Config{
		Driver: cfg.Dataset.Driver,
		Path:   cfg.Dataset.Path,
		DSN:    cfg.Dataset.DSN,
		Table:  cfg.Dataset.Table,
	}
}

func loadRecords(ctx context.Context, dsCfg dataset.Config) ([]domain.ProductRecord, error) {
	source, err := dataset.Open(ctx, dsCfg)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	return source.Load(ctx)
}

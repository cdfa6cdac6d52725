package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpDelivery "github.com/compliancelens/backend/internal/delivery/http"
	"github.com/compliancelens/backend/internal/infrastructure/cache"
	"github.com/compliancelens/backend/internal/metrics"
	"github.com/compliancelens/backend/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the classification API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	log.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Msg("Starting ComplianceLens backend")

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	m := metrics.New()
	rt, err := buildRuntime(ctx, cfg, store, m)
	if err != nil {
		return err
	}

	// The API still classifies posted records when the dataset is unavailable
	var reports *usecase.ReportService
	records, err := loadRecords(ctx, datasetConfig(cfg, ""))
	if err != nil {
		log.Warn().Err(err).Str("driver", cfg.Dataset.Driver).Msg("Dataset not loaded; product endpoints disabled")
	} else {
		reports = usecase.NewReportService(records, rt.compliance)
	}

	var limiter *cache.LimiterStore
	if cfg.RateLimit.PerIP > 0 {
		limiter = cache.NewLimiterStore(cfg.RateLimit.PerIP, 10*time.Minute)
		defer limiter.Close()
	}

	handler := httpDelivery.NewHandler(rt.compliance, reports, httpDelivery.NewModelInfo(rt.bundle, cfg.Model.Predictor))
	router := httpDelivery.SetupRouter(cfg, handler, httpDelivery.RouterOptions{
		Metrics: m,
		Limiter: limiter,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

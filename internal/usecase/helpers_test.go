package usecase

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/compliancelens/backend/internal/domain"
	"github.com/compliancelens/backend/internal/features"
	"github.com/stretchr/testify/require"
)

var referenceNow = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

// mockPredictor is a domain.Predictor driven by a function
type mockPredictor struct {
	predict func(vector []float64) (float64, error)
	calls   atomic.Int64
}

func (m *mockPredictor) PredictProbability(ctx context.Context, vector []float64) (float64, error) {
	m.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return m.predict(vector)
}

func constantPredictor(p float64) *mockPredictor {
	return &mockPredictor{predict: func([]float64) (float64, error) { return p, nil }}
}

func fixtureRecords() []domain.ProductRecord {
	return []domain.ProductRecord{
		{ID: "1", Title: domain.StringPtr("Potato Chips"), MRP: domain.FloatPtr(20), Weight: domain.StringPtr("100 g"), Category: domain.StringPtr("Snacks"), Expiry: domain.StringPtr("12/2024"), Issues: "OK"},
		{ID: "2", Title: domain.StringPtr("Basmati Rice"), MRP: domain.FloatPtr(1450), Weight: domain.StringPtr("5 kg"), Category: domain.StringPtr("Staples"), Expiry: domain.StringPtr("01/2025"), Issues: "OK"},
		{ID: "3", Title: domain.StringPtr("Mango Drink"), Weight: domain.StringPtr("500ml"), Category: domain.StringPtr("Beverages"), Issues: "MRP Missing"},
		{ID: "4", MRP: domain.FloatPtr(120), Category: nil, Expiry: domain.StringPtr("02/2024"), Issues: "Weight Missing"},
		{ID: "5", Title: domain.StringPtr("Trail Mix"), MRP: domain.FloatPtr(6000), Weight: domain.StringPtr("2 kg"), Category: domain.StringPtr("Snacks"), Issues: "Expiry Missing"},
		{ID: "6", Title: domain.StringPtr("Cookies"), MRP: domain.FloatPtr(75), Weight: domain.StringPtr("250 g"), Category: domain.StringPtr("Snacks"), Expiry: domain.StringPtr("08/2024"), Issues: "OK"},
	}
}

func fixturePipeline(t *testing.T) *features.Pipeline {
	t.Helper()
	pipeline, err := features.Fit(fixtureRecords(), features.NewExpiryAnalyzer(features.FixedClock(referenceNow)))
	require.NoError(t, err)
	return pipeline
}

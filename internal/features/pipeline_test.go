package features

import (
	"errors"
	"testing"
	"time"

	"github.com/compliancelens/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var referenceNow = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

func trainingRecords() []domain.ProductRecord {
	return []domain.ProductRecord{
		{ID: "1", MRP: domain.FloatPtr(20), Weight: domain.StringPtr("100 g"), Category: domain.StringPtr("Snacks"), Expiry: domain.StringPtr("12/2024"), Issues: "OK"},
		{ID: "2", MRP: domain.FloatPtr(45), Weight: domain.StringPtr("1 kg"), Category: domain.StringPtr("Staples"), Expiry: domain.StringPtr("01/2025"), Issues: "OK"},
		{ID: "3", MRP: nil, Weight: domain.StringPtr("500ml"), Category: domain.StringPtr("Beverages"), Issues: "MRP Missing"},
		{ID: "4", MRP: domain.FloatPtr(120), Weight: nil, Category: nil, Expiry: domain.StringPtr("02/2024"), Issues: "Weight Missing"},
		{ID: "5", MRP: domain.FloatPtr(300), Weight: domain.StringPtr("2 kg"), Category: domain.StringPtr("Snacks"), Issues: "Expiry Missing"},
		{ID: "6", MRP: domain.FloatPtr(75), Weight: domain.StringPtr("250 g"), Category: domain.StringPtr("Snacks"), Expiry: domain.StringPtr("08/2024"), Issues: "OK"},
	}
}

func TestFit(t *testing.T) {
	pipeline, err := Fit(trainingRecords(), NewExpiryAnalyzer(FixedClock(referenceNow)))
	require.NoError(t, err)

	state := pipeline.State()
	assert.Equal(t, PriceBins, state.Price.Bins())
	assert.Equal(t, WeightBins, state.Weight.Bins())
	assert.Equal(t, ExpiryBinner(), state.Expiry)
	assert.Equal(t, []string{"Beverages", "Snacks", "Staples", "Unknown"}, state.Categories.Classes())
	assert.Equal(t, []float64{1, 1, 1, 4, 4, 5, 3}, state.FeatureBounds())
}

func TestFit_EmptyDataset(t *testing.T) {
	_, err := Fit(nil, NewExpiryAnalyzer(nil))
	assert.True(t, errors.Is(err, domain.ErrEmptyDataset))
}

func TestPipeline_Derive(t *testing.T) {
	pipeline, err := Fit(trainingRecords(), NewExpiryAnalyzer(FixedClock(referenceNow)))
	require.NoError(t, err)

	t.Run("record with missing expiry", func(t *testing.T) {
		record := domain.ProductRecord{
			MRP:      domain.FloatPtr(120),
			Weight:   domain.StringPtr("250 g"),
			Category: domain.StringPtr("Snacks"),
			Issues:   "OK",
		}

		f, err := pipeline.Derive(record)
		require.NoError(t, err)

		assert.True(t, f.MRPPresent)
		assert.False(t, f.ExpiryPresent)
		assert.True(t, f.WeightPresent)
		assert.Equal(t, 250.0, f.WeightStd)
		assert.Equal(t, -1, f.MonthsToExpiry)
		assert.False(t, f.ExpiryValid)
		assert.Equal(t, 0, f.ExpiryBin)
		assert.Equal(t, 1, f.CategoryCode)
		assert.Len(t, f.Vector(), domain.FeatureCount)
	})

	t.Run("presence is independent of parseability", func(t *testing.T) {
		record := domain.ProductRecord{
			Weight:   domain.StringPtr("a few grams"),
			Expiry:   domain.StringPtr("someday"),
			Category: domain.StringPtr("Snacks"),
		}

		f, err := pipeline.Derive(record)
		require.NoError(t, err)

		assert.True(t, f.WeightPresent)
		assert.Equal(t, 0.0, f.WeightStd)
		assert.True(t, f.ExpiryPresent)
		assert.False(t, f.ExpiryParsed)
		assert.Equal(t, -1, f.MonthsToExpiry)
		assert.False(t, f.MRPPresent)
		assert.Equal(t, 0, f.PriceBin)
	})

	t.Run("future expiry", func(t *testing.T) {
		f, err := pipeline.Derive(domain.ProductRecord{
			Expiry:   domain.StringPtr("10/2024"),
			Category: domain.StringPtr("Beverages"),
		})
		require.NoError(t, err)

		assert.True(t, f.ExpiryParsed)
		assert.True(t, f.ExpiryValid)
		assert.Equal(t, 4, f.MonthsToExpiry)
		assert.Equal(t, 3, f.ExpiryBin)
		assert.Equal(t, 0, f.CategoryCode)
	})

	t.Run("missing category uses Unknown", func(t *testing.T) {
		f, err := pipeline.Derive(domain.ProductRecord{})
		require.NoError(t, err)
		assert.Equal(t, 3, f.CategoryCode)
	})

	t.Run("unseen category is an error", func(t *testing.T) {
		_, err := pipeline.Derive(domain.ProductRecord{Category: domain.StringPtr("Frozen")})
		assert.True(t, errors.Is(err, domain.ErrUnknownCategory))
	})
}

func TestPipeline_ReusesFittedBoundaries(t *testing.T) {
	analyzer := NewExpiryAnalyzer(FixedClock(referenceNow))
	pipeline, err := Fit(trainingRecords(), analyzer)
	require.NoError(t, err)

	restored, err := NewPipeline(pipeline.State(), analyzer)
	require.NoError(t, err)

	record := domain.ProductRecord{MRP: domain.FloatPtr(60), Weight: domain.StringPtr("300 g"), Category: domain.StringPtr("Staples")}
	want, err := pipeline.Derive(record)
	require.NoError(t, err)
	got, err := restored.Derive(record)
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestNewPipeline_RejectsInvalidState(t *testing.T) {
	_, err := NewPipeline(State{
		Price:      Binner{Cuts: []float64{1, 2}},
		Weight:     Binner{Cuts: []float64{1, 2, 3, 4}},
		Expiry:     ExpiryBinner(),
		Categories: NewCategoryEncoder([]string{"a"}),
	}, NewExpiryAnalyzer(nil))
	assert.True(t, errors.Is(err, domain.ErrInvalidBundle))

	_, err = NewPipeline(State{
		Price:  Binner{Cuts: []float64{1, 2, 3, 4}},
		Weight: Binner{Cuts: []float64{1, 2, 3, 4}},
		Expiry: ExpiryBinner(),
	}, NewExpiryAnalyzer(nil))
	assert.True(t, errors.Is(err, domain.ErrInvalidBundle))
}

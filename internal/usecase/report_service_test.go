package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compliancelens/backend/internal/domain"
)

func newTestReportService(t *testing.T, records []domain.ProductRecord) *ReportService {
	t.Helper()
	predictor := &mockPredictor{predict: func(v []float64) (float64, error) {
		if v[0] == 0 {
			return 0.25, nil
		}
		return 0.75, nil
	}}
	svc := NewComplianceService(fixturePipeline(t), predictor, ComplianceServiceConfig{Workers: 2})
	return NewReportService(records, svc)
}

func withUnclassifiable(records []domain.ProductRecord) []domain.ProductRecord {
	return append(records, domain.ProductRecord{
		ID:       "7",
		MRP:      domain.FloatPtr(50),
		Category: domain.StringPtr("Frozen"),
		Issues:   "OK",
	})
}

func TestReportService_Products(t *testing.T) {
	svc := newTestReportService(t, withUnclassifiable(fixtureRecords()))

	report, err := svc.Products(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Products, 6)

	chips := report.Products[0]
	assert.Equal(t, "Potato Chips", chips.Title)
	assert.Equal(t, "₹20.00", chips.Price)
	assert.Equal(t, ExpiryStatusValid, chips.ExpiryStatus)
	assert.Equal(t, "compliant", chips.ComplianceClass)
	assert.Equal(t, "Compliant", chips.ComplianceStatus)
	assert.Equal(t, "75.0%", chips.Accuracy)

	rice := report.Products[1]
	assert.Equal(t, "₹1,450.00", rice.Price)

	drink := report.Products[2]
	assert.Equal(t, "Missing", drink.Price)
	assert.Equal(t, ExpiryStatusMissing, drink.ExpiryStatus)
	assert.Equal(t, "non-compliant", drink.ComplianceClass)
	assert.Equal(t, "25.0%", drink.Accuracy)

	unnamed := report.Products[3]
	assert.Equal(t, "Unnamed Product", unnamed.Title)
	assert.Equal(t, "Other", unnamed.Category)
	assert.Equal(t, ExpiryStatusExpired, unnamed.ExpiryStatus)
	assert.Equal(t, "Partial-Compliant", unnamed.ComplianceStatus)
	assert.Nil(t, unnamed.Weight)
}

func TestReportService_Summary(t *testing.T) {
	svc := newTestReportService(t, withUnclassifiable(fixtureRecords()))

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, summary.TotalProducts)
	assert.Equal(t, 3, summary.Compliant)
	assert.Equal(t, 2, summary.PartialCompliant)
	assert.Equal(t, 1, summary.NonCompliant)
	assert.Equal(t, 1, summary.Unclassified)
	assert.Equal(t, 1, summary.ExpiredProducts)
	assert.Equal(t, 3, summary.MissingExpiry)
	assert.Equal(t, 1, summary.MissingMRP)
	assert.Equal(t, 2, summary.MissingWeight)
	assert.Equal(t, "₹7,715.00", summary.TotalValue)
	// five priced records at 75%, one unpriced at 25%
	assert.Equal(t, "66.7%", summary.AverageCompliance)
}

func TestReportService_Stats(t *testing.T) {
	svc := newTestReportService(t, withUnclassifiable(fixtureRecords()))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"Compliant": 3, "Partial": 2, "Non-Compliant": 1}, stats.ComplianceDistribution)
	assert.Equal(t, map[string]int{"Snacks": 3, "Staples": 1, "Beverages": 1, "Frozen": 1}, stats.CategoryDistribution)
	assert.Equal(t, map[string]int{"0-1000": 4, "1000-5000": 1, "5000-20000": 1, "20000+": 0}, stats.PriceRanges)

	require.NotEmpty(t, stats.TopIssues)
	assert.Equal(t, IssueCount{Issue: "OK", Count: 4}, stats.TopIssues[0])
	assert.LessOrEqual(t, len(stats.TopIssues), 5)

	assert.Equal(t, map[string]int{"Compliant": 2, "Partial-Compliant": 1}, stats.CategoryCompliance["Snacks"])
	_, hasFrozen := stats.CategoryCompliance["Frozen"]
	assert.False(t, hasFrozen)
}

func TestTopIssues(t *testing.T) {
	got := topIssues(map[string]int{"b": 2, "a": 2, "c": 5, "d": 1}, 3)
	assert.Equal(t, []IssueCount{{"c", 5}, {"a", 2}, {"b", 2}}, got)
}

package usecase

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/compliancelens/backend/internal/domain"
)

// Dashboard defaults for absent fields
const (
	defaultTitle    = "Unnamed Product"
	defaultCategory = "Other"
	missingPrice    = "Missing"
	topIssuesLimit  = 5
)

// Expiry status values shown on the dashboard
const (
	ExpiryStatusValid   = "Valid"
	ExpiryStatusExpired = "Expired"
	ExpiryStatusMissing = "Missing"
)

// ProductView is a classified record shaped for the dashboard
type ProductView struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Price            string  `json:"price"`
	Expiry           *string `json:"expiry"`
	Weight           *string `json:"weight"`
	ExpiryStatus     string  `json:"expiry_status"`
	ComplianceClass  string  `json:"compliance_class"`
	ComplianceStatus string  `json:"compliance_status"`
	Issues           string  `json:"issues"`
	Category         string  `json:"category"`
	Accuracy         string  `json:"accuracy"`
}

// ProductsReport lists classified products and how many rows were skipped
type ProductsReport struct {
	Products []ProductView `json:"products"`
	Skipped  int           `json:"skipped"`
}

// Summary aggregates the classified dataset
type Summary struct {
	TotalProducts     int    `json:"total_products"`
	Compliant         int    `json:"compliant"`
	PartialCompliant  int    `json:"partial_compliant"`
	NonCompliant      int    `json:"non_compliant"`
	Unclassified      int    `json:"unclassified"`
	ExpiredProducts   int    `json:"expired_products"`
	MissingExpiry     int    `json:"missing_expiry"`
	MissingMRP        int    `json:"missing_mrp"`
	MissingWeight     int    `json:"missing_weight"`
	TotalValue        string `json:"total_value"`
	AverageCompliance string `json:"average_compliance"`
}

// IssueCount is one entry of the most frequent issues
type IssueCount struct {
	Issue string `json:"issue"`
	Count int    `json:"count"`
}

// Stats holds the dashboard distributions
type Stats struct {
	ComplianceDistribution map[string]int            `json:"compliance_distribution"`
	CategoryDistribution   map[string]int            `json:"category_distribution"`
	TopIssues              []IssueCount              `json:"top_issues"`
	PriceRanges            map[string]int            `json:"price_ranges"`
	CategoryCompliance     map[string]map[string]int `json:"category_compliance"`
}

// ReportService classifies a loaded dataset snapshot for the dashboard.
// Records are classified on every call; rows that fail are skipped and logged.
type ReportService struct {
	records    []domain.ProductRecord
	compliance *ComplianceService
	printer    *message.Printer
}

// NewReportService creates a report service over an immutable record snapshot
func NewReportService(records []domain.ProductRecord, compliance *ComplianceService) *ReportService {
	return &ReportService{
		records:    records,
		compliance: compliance,
		printer:    message.NewPrinter(language.English),
	}
}

// Records returns the number of records in the snapshot
func (s *ReportService) Records() int {
	return len(s.records)
}

// Products classifies every record and shapes the successful ones for display
func (s *ReportService) Products(ctx context.Context) (*ProductsReport, error) {
	items, err := s.classify(ctx)
	if err != nil {
		return nil, err
	}

	report := &ProductsReport{Products: make([]ProductView, 0, len(items))}
	for _, item := range items {
		if !item.OK() {
			report.Skipped++
			continue
		}
		report.Products = append(report.Products, s.productView(s.records[item.Index], item.Classification))
	}
	return report, nil
}

// Summary aggregates status counts, missing fields and value across the dataset
func (s *ReportService) Summary(ctx context.Context) (*Summary, error) {
	items, err := s.classify(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{TotalProducts: len(s.records)}
	var totalValue, probabilitySum float64
	classified := 0

	for i, record := range s.records {
		m := s.compliance.Pipeline().Measure(record)
		switch {
		case !m.ExpiryParsed:
			summary.MissingExpiry++
		case !m.ExpiryValid:
			summary.ExpiredProducts++
		}
		if !m.MRPPresent {
			summary.MissingMRP++
		}
		if !m.WeightPresent {
			summary.MissingWeight++
		}
		totalValue += m.MRP

		item := items[i]
		if !item.OK() {
			summary.Unclassified++
			continue
		}
		classified++
		probabilitySum += item.Classification.Result.Probability
		switch item.Classification.Result.Status {
		case domain.StatusCompliant:
			summary.Compliant++
		case domain.StatusPartialCompliant:
			summary.PartialCompliant++
		case domain.StatusNonCompliant:
			summary.NonCompliant++
		}
	}

	summary.TotalValue = s.formatPrice(totalValue)
	average := 0.0
	if classified > 0 {
		average = probabilitySum / float64(classified)
	}
	summary.AverageCompliance = formatPercent(s.printer, average)
	return summary, nil
}

// Stats returns status, category, issue and price distributions
func (s *ReportService) Stats(ctx context.Context) (*Stats, error) {
	items, err := s.classify(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		ComplianceDistribution: map[string]int{"Compliant": 0, "Partial": 0, "Non-Compliant": 0},
		CategoryDistribution:   make(map[string]int),
		PriceRanges:            map[string]int{"0-1000": 0, "1000-5000": 0, "5000-20000": 0, "20000+": 0},
		CategoryCompliance:     make(map[string]map[string]int),
	}
	issues := make(map[string]int)

	for i, record := range s.records {
		issues[record.Issues]++
		if record.Category != nil {
			stats.CategoryDistribution[*record.Category]++
		}
		if record.MRP != nil {
			stats.PriceRanges[priceRange(*record.MRP)]++
		}

		item := items[i]
		if !item.OK() {
			continue
		}
		status := item.Classification.Result.Status
		switch status {
		case domain.StatusCompliant:
			stats.ComplianceDistribution["Compliant"]++
		case domain.StatusPartialCompliant:
			stats.ComplianceDistribution["Partial"]++
		case domain.StatusNonCompliant:
			stats.ComplianceDistribution["Non-Compliant"]++
		}
		if record.Category != nil {
			byStatus, ok := stats.CategoryCompliance[*record.Category]
			if !ok {
				byStatus = make(map[string]int)
				stats.CategoryCompliance[*record.Category] = byStatus
			}
			byStatus[string(status)]++
		}
	}

	stats.TopIssues = topIssues(issues, topIssuesLimit)
	return stats, nil
}

func (s *ReportService) classify(ctx context.Context) ([]domain.BatchItem, error) {
	items, err := s.compliance.ClassifyBatch(ctx, s.records)
	if err != nil {
		return nil, err
	}
	skipped := 0
	for _, item := range items {
		if !item.OK() {
			skipped++
			log.Warn().Err(item.Err).Str("record_id", item.RecordID).Msg("Skipping unclassifiable record")
		}
	}
	if skipped > 0 {
		log.Info().Int("skipped", skipped).Int("records", len(items)).Msg("Dataset classified with skipped records")
	}
	return items, nil
}

func (s *ReportService) productView(record domain.ProductRecord, c *domain.Classification) ProductView {
	view := ProductView{
		ID:               record.ID,
		Title:            defaultTitle,
		Price:            missingPrice,
		Expiry:           record.Expiry,
		Weight:           record.Weight,
		ExpiryStatus:     expiryStatus(c.Features),
		ComplianceClass:  c.Result.Status.Class(),
		ComplianceStatus: string(c.Result.Status),
		Issues:           record.Issues,
		Category:         defaultCategory,
		Accuracy:         formatPercent(s.printer, c.Result.Probability),
	}
	if record.Title != nil {
		view.Title = *record.Title
	}
	if record.MRP != nil {
		view.Price = s.formatPrice(*record.MRP)
	}
	if record.Category != nil {
		view.Category = *record.Category
	}
	return view
}

func (s *ReportService) formatPrice(v float64) string {
	return s.printer.Sprintf("₹%.2f", v)
}

func formatPercent(p *message.Printer, probability float64) string {
	return p.Sprintf("%.1f%%", probability*100)
}

func expiryStatus(f domain.DerivedFeatures) string {
	switch {
	case f.ExpiryValid:
		return ExpiryStatusValid
	case !f.ExpiryParsed:
		return ExpiryStatusMissing
	default:
		return ExpiryStatusExpired
	}
}

func priceRange(mrp float64) string {
	switch {
	case mrp <= 1000:
		return "0-1000"
	case mrp <= 5000:
		return "1000-5000"
	case mrp <= 20000:
		return "5000-20000"
	default:
		return "20000+"
	}
}

// topIssues returns the most frequent issues, ties broken alphabetically
func topIssues(counts map[string]int, limit int) []IssueCount {
	out := make([]IssueCount, 0, len(counts))
	for issue, n := range counts {
		out = append(out, IssueCount{Issue: issue, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Issue < out[j].Issue
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/compliancelens/backend/internal/domain"
	"github.com/compliancelens/backend/internal/model"
	"github.com/compliancelens/backend/internal/usecase"
)

// MaxBatchSize bounds the number of records accepted by the batch endpoint
const MaxBatchSize = 1000

// ModelInfo describes the bundle the server classifies with
type ModelInfo struct {
	Version    string       `json:"version"`
	CreatedAt  time.Time    `json:"createdAt"`
	Predictor  string       `json:"predictor"`
	Features   []string     `json:"features"`
	Categories []string     `json:"categories"`
	PriceCuts  []float64    `json:"priceCuts"`
	WeightCuts []float64    `json:"weightCuts"`
	ExpiryCuts []float64    `json:"expiryCuts"`
	Report     model.Report `json:"report"`
}

// NewModelInfo builds the model description from a loaded bundle
func NewModelInfo(bundle *model.Bundle, predictor string) ModelInfo {
	state := bundle.Features
	return ModelInfo{
		Version:    bundle.Version,
		CreatedAt:  bundle.CreatedAt,
		Predictor:  predictor,
		Features:   domain.FeatureNames,
		Categories: state.Categories.Classes(),
		PriceCuts:  state.Price.Cuts,
		WeightCuts: state.Weight.Cuts,
		ExpiryCuts: state.Expiry.Cuts,
		Report:     bundle.Report,
	}
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	compliance *usecase.ComplianceService
	reports    *usecase.ReportService // nil when no dataset is loaded
	info       ModelInfo
}

// NewHandler creates a new HTTP handler
func NewHandler(compliance *usecase.ComplianceService, reports *usecase.ReportService, info ModelInfo) *Handler {
	return &Handler{
		compliance: compliance,
		reports:    reports,
		info:       info,
	}
}

// BatchRequest is the body of the batch classification endpoint
type BatchRequest struct {
	Records []domain.ProductRecord `json:"records"`
}

// BatchItemResponse is one row of a batch response
type BatchItemResponse struct {
	Index    int                      `json:"index"`
	RecordID string                   `json:"recordId,omitempty"`
	Features *domain.DerivedFeatures  `json:"features,omitempty"`
	Result   *domain.ComplianceResult `json:"result,omitempty"`
	Error    *ErrorResponse           `json:"error,omitempty"`
}

// BatchResponse is the body returned by the batch classification endpoint
type BatchResponse struct {
	Items      []BatchItemResponse `json:"items"`
	Classified int                 `json:"classified"`
	Failed     int                 `json:"failed"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"service":       "compliancelens-backend",
		"bundleVersion": h.info.Version,
		"datasetLoaded": h.reports != nil,
	})
}

// ModelInfo returns the fitted bundle description
func (h *Handler) ModelInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.info)
}

// Classify handles single record classification requests
func (h *Handler) Classify(c *gin.Context) {
	var record domain.ProductRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		respondError(c, invalidRequest(err))
		return
	}

	classification, err := h.compliance.Evaluate(c.Request.Context(), record)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, classification)
}

// ClassifyBatch classifies many records; per-record failures are reported inline
func (h *Handler) ClassifyBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, invalidRequest(err))
		return
	}
	if len(req.Records) == 0 {
		respondError(c, invalidRequestf("records must not be empty"))
		return
	}
	if len(req.Records) > MaxBatchSize {
		respondError(c, invalidRequestf("at most %d records per batch, got %d", MaxBatchSize, len(req.Records)))
		return
	}

	items, err := h.compliance.ClassifyBatch(c.Request.Context(), req.Records)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := BatchResponse{Items: make([]BatchItemResponse, len(items))}
	for i, item := range items {
		row := BatchItemResponse{Index: item.Index, RecordID: item.RecordID}
		if item.OK() {
			row.Features = &item.Classification.Features
			row.Result = &item.Classification.Result
			resp.Classified++
		} else {
			_, body := errorStatus(item.Err)
			row.Error = &body
			resp.Failed++
		}
		resp.Items[i] = row
	}

	log.Info().
		Int("records", len(items)).
		Int("failed", resp.Failed).
		Msg("Batch classified")

	c.JSON(http.StatusOK, resp)
}

// Products returns the classified dataset shaped for the dashboard
func (h *Handler) Products(c *gin.Context) {
	if !h.requireDataset(c) {
		return
	}
	report, err := h.reports.Products(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Summary returns dataset totals
func (h *Handler) Summary(c *gin.Context) {
	if !h.requireDataset(c) {
		return
	}
	summary, err := h.reports.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Stats returns dataset distributions
func (h *Handler) Stats(c *gin.Context) {
	if !h.requireDataset(c) {
		return
	}
	stats, err := h.reports.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) requireDataset(c *gin.Context) bool {
	if h.reports == nil {
		respondError(c, domain.ErrDatasetUnavailable)
		return false
	}
	return true
}

package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/compliancelens/backend/internal/domain"
)

// ErrorResponse is the JSON body of every error reply
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

// Error codes
const (
	CodeInvalidRequest     = "invalid_request"
	CodeUnknownCategory    = "unknown_category"
	CodeModelInput         = "model_input"
	CodeModelUnavailable   = "model_unavailable"
	CodeDatasetUnavailable = "dataset_unavailable"
	CodeTimeout            = "timeout"
	CodeRateLimited        = "rate_limited"
	CodeInternal           = "internal_error"
)

func invalidRequest(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
}

func invalidRequestf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// errorStatus maps domain errors onto HTTP status codes
func errorStatus(err error) (int, ErrorResponse) {
	var status int
	var code string

	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status, code = http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, domain.ErrUnknownCategory):
		status, code = http.StatusUnprocessableEntity, CodeUnknownCategory
	case errors.Is(err, domain.ErrModelInput):
		status, code = http.StatusUnprocessableEntity, CodeModelInput
	case errors.Is(err, domain.ErrModelUnavailable):
		status, code = http.StatusServiceUnavailable, CodeModelUnavailable
	case errors.Is(err, domain.ErrDatasetUnavailable):
		status, code = http.StatusServiceUnavailable, CodeDatasetUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status, code = http.StatusGatewayTimeout, CodeTimeout
	default:
		status, code = http.StatusInternalServerError, CodeInternal
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	return status, ErrorResponse{Code: code, Message: message}
}

func respondError(c *gin.Context, err error) {
	status, body := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, body)
}

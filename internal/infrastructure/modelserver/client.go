// Package modelserver calls a remote model server that scores feature vectors.
package modelserver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/compliancelens/backend/internal/domain"
)

const (
	predictPath = "/predict"
	maxAttempts = 3
)

// predictRequest is the wire body: one row per vector
type predictRequest struct {
	Features [][]float64 `json:"features"`
}

type predictResponse struct {
	Probabilities []float64 `json:"probabilities"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client implements domain.Predictor against a remote model server
type Client struct {
	rest        *resty.Client
	baseURL     string
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	debug       bool
}

// NewClient creates a model server client. perSecond bounds the request rate;
// non-positive values disable limiting.
func NewClient(baseURL string, timeout time.Duration, perSecond float64) *Client {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(5 * time.Second)
	}
	r.SetHeader("User-Agent", "ComplianceLens/1.0")

	limit := rate.Inf
	burst := 1
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
		burst = int(perSecond) + 1
	}

	return &Client{
		rest:        r,
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: rate.NewLimiter(limit, burst),
		backoff:     exponentialBackoff,
	}
}

// SetDebug enables request/response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// exponentialBackoff returns 500ms, 1s, 2s, ... for attempts 1, 2, 3, ...
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// PredictProbability sends one vector and returns the compliance probability.
// Rejected vectors yield *domain.ModelInputError; transport and server
// failures are retried and then reported as domain.ErrModelUnavailable.
func (c *Client) PredictProbability(ctx context.Context, vector []float64) (float64, error) {
	body := predictRequest{Features: [][]float64{vector}}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return 0, fmt.Errorf("rate limiter error: %w", err)
		}

		probability, retry, err := c.predictOnce(ctx, body)
		if err == nil {
			return probability, nil
		}
		if !retry {
			return 0, err
		}

		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt).Msg("Model server request failed")
		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(c.backoff(attempt)):
		}
	}

	return 0, lastErr
}

// predictOnce performs a single request and reports whether a failure is worth retrying
func (c *Client) predictOnce(ctx context.Context, body predictRequest) (float64, bool, error) {
	var result predictResponse

	// Error bodies are decoded by hand so a malformed rejection still reads as a rejection.
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post(c.baseURL + predictPath)
	if err != nil {
		if ctx.Err() != nil {
			return 0, false, ctx.Err()
		}
		if resp != nil && resp.RawResponse != nil {
			// the server answered; only the success body failed to decode
			return 0, false, fmt.Errorf("%w: status %d, undecodable body: %v", domain.ErrModelUnavailable, resp.StatusCode(), err)
		}
		return 0, true, fmt.Errorf("%w: %v", domain.ErrModelUnavailable, err)
	}

	if c.debug {
		log.Debug().Int("status", resp.StatusCode()).Str("body", resp.String()).Msg("Model server response")
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusOK:
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		var failure errorResponse
		_ = json.Unmarshal(resp.Body(), &failure)
		reason := failure.Error
		if reason == "" {
			reason = fmt.Sprintf("rejected with status %d", code)
		}
		return 0, false, &domain.ModelInputError{Reason: reason}
	case code >= 500 || code == http.StatusTooManyRequests:
		return 0, true, fmt.Errorf("%w: status %d", domain.ErrModelUnavailable, code)
	default:
		return 0, false, fmt.Errorf("%w: status %d, body: %s", domain.ErrModelUnavailable, code, resp.String())
	}

	if len(result.Probabilities) != 1 {
		return 0, false, fmt.Errorf("%w: expected 1 probability, got %d",
			domain.ErrModelUnavailable, len(result.Probabilities))
	}
	p := result.Probabilities[0]
	if p < 0 || p > 1 || math.IsNaN(p) {
		return 0, false, fmt.Errorf("%w: probability %g outside [0, 1]", domain.ErrModelUnavailable, p)
	}
	return p, false, nil
}

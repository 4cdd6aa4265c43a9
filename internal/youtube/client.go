// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

// Package youtube calls the YouTube Data API through the credential pool.
//
// Every request reserves units on a credential, passes a client-side rate
// limiter and a circuit breaker, and is retried on another credential when
// the failure is a quota rejection or transient. The retry budget bounds the
// number of re-attempts per call.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/keyscope/internal/metrics"
	"github.com/tomtom215/keyscope/internal/quota"
)

const (
	serviceName = "youtube"
	breakerName = "youtube-api"

	// maxBodyBytes caps how much of a response is read.
	maxBodyBytes = 8 << 20
)

// CredentialPool hands out credentials for upstream calls.
type CredentialPool interface {
	Acquire(units int) (quota.Lease, error)
	Release(lease quota.Lease)
	MarkExhausted(cred string) error
	Advance()
}

// Client is a quota-aware Data API client. It is safe for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	pool    CredentialPool
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]byte]
	logger  zerolog.Logger
}

// NewClient creates a client drawing credentials from pool.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewClient(cfg Config, pool CredentialPool, logger zerolog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid youtube config: %w", err)
	}
	if pool == nil {
		return nil, fmt.Errorf("credential pool is required")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := &Client{
		cfg:     cfg,
		http:    &http.Client{},
		pool:    pool,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:  logger.With().Str("component", "youtube").Logger(),
	}
	c.cb = newBreaker(cfg.Breaker, c.logger)
	return c, nil
}

// WithHTTPClient replaces the underlying HTTP client. Intended for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// newBreaker opens after FailureRatio of at least MinRequests calls fail
// within Interval. Only transient failures count; quota rejections and
// client errors say nothing about upstream health.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func newBreaker(cfg BreakerConfig, logger zerolog.Logger) *gobreaker.CircuitBreaker[[]byte] {
	// Initialize circuit breaker state metrics
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= cfg.FailureRatio {
				logger.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", ratio*100).Msg("Opening circuit")
				return true
			}
			return false
		},
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.Category != CategoryTransient
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Call performs GET <base>/<endpoint> and decodes the JSON body into out.
//
// The credential is chosen by the pool. On a quota rejection the credential
// is marked exhausted; on a quota rejection or transient failure the
// reservation is refunded, the pool advances, and the call is retried, up to
// RetryBudget times. Other failures are returned at once.
func (c *Client) Call(ctx context.Context, endpoint string, params url.Values, out any) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		lease, err := c.pool.Acquire(c.cfg.UnitsPerCall)
		if err != nil {
			if lastErr != nil {
				return fmt.Errorf("%w: %w", err, lastErr)
			}
			return err
		}

		body, err := c.attempt(ctx, endpoint, params, lease)
		if err == nil {
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return &APIError{Category: CategoryOther, Endpoint: endpoint, Message: "decode response", Err: err}
			}
			return nil
		}

		// Nothing was consumed upstream for a failed call.
		c.pool.Release(lease)

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			return err
		}
		if apiErr.Category == CategoryQuotaExceeded {
			if markErr := c.pool.MarkExhausted(lease.Credential); markErr != nil {
				c.logger.Warn().Err(markErr).Str("credential", lease.Masked()).Msg("Failed to mark credential exhausted")
			}
		}
		if !apiErr.Retryable() {
			return apiErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %w", ctxErr, apiErr)
		}
		lastErr = apiErr

		if attempt >= c.cfg.RetryBudget {
			return fmt.Errorf("%w after %d attempts: %w", ErrRetryBudgetExhausted, attempt+1, apiErr)
		}

		c.logger.Info().
			Str("endpoint", endpoint).
			Str("credential", lease.Masked()).
			Str("category", string(apiErr.Category)).
			Int("attempt", attempt+1).
			Msg("Retrying with next credential")
		metrics.UpstreamRetries.WithLabelValues(serviceName, string(apiErr.Category)).Inc()
		c.pool.Advance()
	}
}

// attempt runs a single request through the limiter and the breaker.
func (c *Client) attempt(ctx context.Context, endpoint string, params url.Values, lease quota.Lease) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &APIError{Category: CategoryTransient, Endpoint: endpoint, Message: "rate limiter", Err: err}
	}

	start := time.Now()
	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.do(ctx, endpoint, params, lease.Credential)
	})
	outcome := "success"

	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
		err = &APIError{Category: CategoryTransient, Endpoint: endpoint, Message: "circuit open", Err: err}
		outcome = string(CategoryTransient)
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(float64(c.cb.Counts().ConsecutiveFailures))
		outcome = string(CategoryOther)
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			outcome = string(apiErr.Category)
		}
	}

	metrics.RecordUpstreamCall(serviceName, endpoint, outcome, time.Since(start))
	return body, err
}

// do executes the HTTP request and categorizes any failure.
func (c *Client) do(ctx context.Context, endpoint string, params url.Values, credential string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("key", credential)
	reqURL := c.cfg.BaseURL + "/" + strings.TrimLeft(endpoint, "/") + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, &APIError{Category: CategoryOther, Endpoint: endpoint, Message: "create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Strip the URL so the credential never reaches logs.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, &APIError{Category: CategoryTransient, Endpoint: endpoint, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &APIError{Category: CategoryTransient, Endpoint: endpoint, Message: "read body", Err: err}
	}

	if resp.StatusCode == http.StatusOK {
		return body, nil
	}

	message := http.StatusText(resp.StatusCode)
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil && eb.Error.Message != "" {
		message = eb.Error.Message
		for _, e := range eb.Error.Errors {
			if e.Reason != "" {
				message += " [" + e.Reason + "]"
			}
		}
	}
	return nil, &APIError{
		Category:   classifyStatus(resp.StatusCode, message),
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode,
		Message:    message,
	}
}

// BreakerState returns the current circuit breaker state name.
func (c *Client) BreakerState() string {
	return c.cb.State().String()
}

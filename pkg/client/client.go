// Package client provides the HTTP client for the booking API with rate
// limiting, retries, and error classification.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Sternrassler/flight-booking-client/pkg/logging"
	"github.com/Sternrassler/flight-booking-client/pkg/ratelimit"
)

// Client is the booking API client.
type Client struct {
	httpClient  *http.Client
	baseURL     *url.URL
	limiter     *rate.Limiter
	rateLimiter *ratelimit.Tracker
	retry       RetryConfig
	config      Config
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the booking API, e.g. "https://api.example.com"
	BaseURL string

	// User-Agent header
	// Format: "AppName/Version (contact@example.com)"
	UserAgent string

	// APIToken is sent as a bearer token when set
	APIToken string

	// Timeout per HTTP attempt
	Timeout time.Duration

	// Client-side rate limiting; RequestsPerSecond <= 0 disables it
	RequestsPerSecond float64
	Burst             int

	// Retry
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Redis client for the shared rate-limit state (optional)
	Redis *redis.Client
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL, userAgent string) Config {
	return Config{
		BaseURL:           baseURL,
		UserAgent:         userAgent,
		Timeout:           15 * time.Second,
		RequestsPerSecond: 10,
		Burst:             5,
		MaxRetries:        2,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        10 * time.Second,
	}
}

// New creates a new booking API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https (got %q)", cfg.BaseURL)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max_retries must be >= 0 (got %d)", cfg.MaxRetries)
	}

	logger := logging.NewLogger(logging.ComponentClient)

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	retry := DefaultRetryConfig()
	retry.MaxAttempts = cfg.MaxRetries + 1
	if cfg.InitialBackoff > 0 {
		retry.InitialBackoff = cfg.InitialBackoff
	}
	if cfg.MaxBackoff > 0 {
		retry.MaxBackoff = cfg.MaxBackoff
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    base,
		limiter:    rate.NewLimiter(limit, burst),
		retry:      retry,
		config:     cfg,
		logger:     logger,
	}

	if cfg.Redis != nil {
		c.rateLimiter = ratelimit.NewTracker(cfg.Redis, logger)
	}

	return c, nil
}

// Do performs an HTTP request with rate limiting, retries, and error handling.
//
// Responses with retriable failures (5xx, 429, network) are retried; once
// retries are exhausted the error wraps ErrRetryExhausted. Other non-2xx
// responses are returned to the caller unchanged.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	endpoint := req.URL.Path

	startTime := time.Now()
	defer func() {
		apiRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	if err := c.gate(ctx, endpoint); err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if c.config.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIToken)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Msg("Executing booking API request")

	var resp *http.Response

	err := retryWithBackoff(ctx, c.retry, c.logger, func(attempt int) error {
		attemptReq := req
		if attempt > 1 {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
			r, err := rewind(req)
			if err != nil {
				return &APIError{ErrorClass: ErrorClassClient, Message: "request body cannot be replayed", Err: err}
			}
			attemptReq = r
		}

		r, err := c.httpClient.Do(attemptReq)
		if err != nil {
			c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
			apiErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			apiRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return err
		}

		if c.rateLimiter != nil {
			if err := c.rateLimiter.UpdateFromHeaders(ctx, r.Header); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
			}
		}

		apiRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(r.StatusCode)).Inc()

		errClass := classifyStatus(r.StatusCode)
		if errClass == "" {
			resp = r
			return nil
		}

		apiErrorsTotal.WithLabelValues(string(errClass)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", r.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Booking API request error")

		if !shouldRetry(errClass) {
			// Let the caller decode the error body
			resp = r
			return nil
		}

		apiErr := &APIError{
			StatusCode: r.StatusCode,
			ErrorClass: errClass,
			Message:    errorMessage(r),
			RetryAfter: parseRetryAfter(r.Header.Get("Retry-After")),
		}
		r.Body.Close()
		return apiErr
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// gate waits for the local limiter and consults the shared rate-limit state.
func (c *Client) gate(ctx context.Context, endpoint string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrContextCancelled, ctx.Err())
		}
		return fmt.Errorf("rate limiter: %w", err)
	}

	if c.rateLimiter == nil {
		return nil
	}

	allowed, err := c.rateLimiter.ShouldAllowRequest(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrContextCancelled, ctx.Err())
		}
		// Shared state is advisory; a Redis outage must not stop requests
		c.logger.Warn().Err(err).Msg("Rate limit check failed")
		return nil
	}
	if !allowed {
		c.logger.Warn().
			Str("endpoint", endpoint).
			Msg("Request blocked by rate limiter")
		apiRequestsTotal.WithLabelValues(endpoint, "rate_limited").Inc()
		return ErrRateLimited
	}
	return nil
}

// rewind returns a copy of req with a fresh body for another attempt.
func rewind(req *http.Request) (*http.Request, error) {
	r := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return r, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("request has no GetBody")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	r.Body = body
	return r, nil
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// errorMessage extracts a short message from an error response body.
func errorMessage(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if msg := decodeErrorBody(body); msg != "" {
		return msg
	}
	return resp.Status
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// SetRetryConfig overrides the retry configuration (for testing).
func (c *Client) SetRetryConfig(cfg RetryConfig) {
	c.retry = cfg
}

// RateLimiter returns the shared rate-limit tracker, or nil without Redis.
func (c *Client) RateLimiter() *ratelimit.Tracker {
	return c.rateLimiter
}

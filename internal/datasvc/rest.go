// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package datasvc

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxRetries is the default number of attempts per request.
	DefaultMaxRetries = 3

	// MaxResponseSize is the maximum response body size (10MB).
	MaxResponseSize = 10 * 1024 * 1024

	retryBaseDelay = 500 * time.Millisecond
	retryMaxDelay  = 10 * time.Second

	restPrefix = "/rest/v1/"

	headerRequestID = "X-Request-ID"
	mediaSingle     = "application/vnd.pgrst.object+json"
)

// sharedTransport is reused by every REST client for connection pooling.
var (
	sharedTransport     *http.Transport
	sharedTransportOnce sync.Once
)

func pooledTransport() *http.Transport {
	sharedTransportOnce.Do(func() {
		sharedTransport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		}
	})
	return sharedTransport
}

// =============================================================================
// CLIENT
// =============================================================================

// REST talks to a PostgREST-compatible endpoint.
type REST struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// RESTOption configures a REST client.
type RESTOption func(*REST)

// WithHTTPClient replaces the pooled HTTP client.
func WithHTTPClient(c *http.Client) RESTOption {
	return func(r *REST) { r.httpClient = c }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) RESTOption {
	return func(r *REST) {
		if d > 0 {
			r.httpClient.Timeout = d
		}
	}
}

// WithMaxRetries sets the number of attempts per request.
func WithMaxRetries(n int) RESTOption {
	return func(r *REST) {
		if n > 0 {
			r.maxRetries = n
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables limiting.
func WithRateLimit(rps float64) RESTOption {
	return func(r *REST) {
		if rps <= 0 {
			r.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) RESTOption {
	return func(r *REST) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewREST creates a client for the service at baseURL authenticated with
// the public API key.
func NewREST(baseURL, apiKey string, opts ...RESTOption) (*REST, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrNotConfigured
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}

	r := &REST{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: pooledTransport(),
		},
		maxRetries: DefaultMaxRetries,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "datasvc", "backend", "rest")
	return r, nil
}

// Select implements Backend.
func (r *REST) Select(ctx context.Context, table string, q Query, dest any) error {
	params := url.Values{}
	if len(q.Columns) > 0 {
		params.Set("select", strings.Join(q.Columns, ","))
	} else {
		params.Set("select", "*")
	}
	addFilters(params, q.Filters)
	if q.Order != nil {
		dir := "asc"
		if q.Order.Descending {
			dir = "desc"
		}
		params.Set("order", q.Order.Column+"."+dir)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	req := request{method: http.MethodGet, path: restPrefix + table, params: params, single: q.Single}
	return r.do(ctx, req, dest)
}

// Insert implements Backend.
func (r *REST) Insert(ctx context.Context, table string, row Row, dest any) error {
	req := request{method: http.MethodPost, path: restPrefix + table, body: row, represent: true}
	return r.do(ctx, req, dest)
}

// Update implements Backend.
func (r *REST) Update(ctx context.Context, table string, filters []Filter, patch Row, dest any) error {
	if len(filters) == 0 {
		return errNoFilters
	}
	params := url.Values{}
	addFilters(params, filters)
	req := request{method: http.MethodPatch, path: restPrefix + table, params: params, body: patch, represent: true}
	return r.do(ctx, req, dest)
}

// Delete implements Backend.
func (r *REST) Delete(ctx context.Context, table string, filters []Filter, dest any) error {
	if len(filters) == 0 {
		return errNoFilters
	}
	params := url.Values{}
	addFilters(params, filters)
	req := request{method: http.MethodDelete, path: restPrefix + table, params: params, represent: true}
	return r.do(ctx, req, dest)
}

// Call implements Backend.
func (r *REST) Call(ctx context.Context, fn string, args Row, dest any) error {
	if args == nil {
		args = Row{}
	}
	req := request{method: http.MethodPost, path: restPrefix + "rpc/" + fn, body: args}
	return r.do(ctx, req, dest)
}

// Ping implements Backend.
func (r *REST) Ping(ctx context.Context) error {
	return r.do(ctx, request{method: http.MethodGet, path: restPrefix}, nil)
}

// Close implements Backend. The pooled transport is shared and stays open.
func (r *REST) Close() error {
	return nil
}

func addFilters(params url.Values, filters []Filter) {
	for _, f := range filters {
		op := f.Op
		if op == "" {
			op = OpEq
		}
		if f.Value == nil && op == OpEq {
			params.Add(f.Column, "is.null")
			continue
		}
		params.Add(f.Column, string(op)+"."+FormatValue(f.Value))
	}
}

// =============================================================================
// TRANSPORT
// =============================================================================

type request struct {
	method    string
	path      string
	params    url.Values
	body      any
	single    bool
	represent bool
}

// idempotent reports whether repeating the request cannot duplicate a
// write. POST covers inserts and rpc calls.
func (req request) idempotent() bool {
	return req.method != http.MethodPost
}

func (r *REST) do(ctx context.Context, req request, dest any) error {
	var payload []byte
	if req.body != nil {
		var err error
		payload, err = json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	target := r.baseURL + req.path
	if len(req.params) > 0 {
		target += "?" + req.params.Encode()
	}
	requestID := uuid.NewString()

	var lastErr error
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := calculateBackoff(attempt)
			r.logger.Debug("retrying request",
				"request_id", requestID, "attempt", attempt+1, "backoff", backoff, "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		body, err := r.roundTrip(ctx, req, target, requestID, payload)
		if err != nil {
			lastErr = err
			if req.idempotent() && isRetryable(err) {
				continue
			}
			if !req.idempotent() && notProcessed(err) {
				continue
			}
			return err
		}

		if dest == nil || len(bytes.TrimSpace(body)) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, dest); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (r *REST) roundTrip(ctx context.Context, req request, target, requestID string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("apikey", r.apiKey)
	if r.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)
	}
	httpReq.Header.Set(headerRequestID, requestID)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.single {
		httpReq.Header.Set("Accept", mediaSingle)
	} else {
		httpReq.Header.Set("Accept", "application/json")
	}
	if req.represent {
		httpReq.Header.Set("Prefer", "return=representation")
	}

	start := time.Now()
	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &transportError{err: err}
	}
	defer resp.Body.Close()

	data, err := readResponse(resp.Body)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("request complete",
		"request_id", requestID,
		"method", req.method,
		"path", req.path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode >= 400 {
		return nil, handleErrorResponse(resp.StatusCode, data)
	}
	return data, nil
}

// transportError marks a network failure worth retrying.
type transportError struct {
	err error
}

func (e *transportError) Error() string { return "request failed: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// readResponse reads the response body with a size limit.
func readResponse(body io.Reader) ([]byte, error) {
	limited := io.LimitReader(body, MaxResponseSize+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(data) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeds %d bytes", MaxResponseSize)
	}
	return data, nil
}

// handleErrorResponse maps an error status and body to an error.
func handleErrorResponse(status int, body []byte) error {
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Hint    string `json:"hint"`
		Details string `json:"details"`
	}
	_ = json.Unmarshal(body, &payload)

	apiErr := &APIError{Status: status, Code: payload.Code, Message: payload.Message, Hint: payload.Hint}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
	case status == http.StatusNotAcceptable && payload.Code == "PGRST116":
		return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
	case status == http.StatusConflict || payload.Code == "23505":
		return fmt.Errorf("%w: %s", ErrConflict, apiErr.Message)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
	default:
		return apiErr
	}
}

// isRetryable reports whether a request should be attempted again.
func isRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var te *transportError
	if errors.As(err, &te) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	return false
}

// notProcessed reports whether the server never acted on the request: it
// was rate limited, or the connection was never established.
func notProcessed(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// calculateBackoff returns the exponential backoff for the given attempt.
func calculateBackoff(attempt int) time.Duration {
	backoff := retryBaseDelay * time.Duration(1<<uint(attempt))
	if backoff > retryMaxDelay {
		backoff = retryMaxDelay
	}
	return backoff
}

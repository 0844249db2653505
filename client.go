package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is an HTTP request engine that layers config merging, an
// interceptor pipeline, declarative auth, per-attempt timeouts and
// retry-with-backoff around the standard net/http Client. It holds no
// per-request mutable state and is safe for concurrent use.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	timeout        time.Duration
	maxRetries     int
	retryBaseDelay time.Duration
	headers        *Headers
	auth           AuthConfig
	retryPolicy    RetryPolicy
	interceptors   *interceptorChain
	requestIDGen   func() string
	metrics        *MetricsCollector
	debug          *DebugConfig
	logger         Logger

	validationError error
}

// New constructs a Client using the provided functional options. A best
// effort validation is performed; call IsValid / ValidationError for errors.
func New(options ...Option) *Client {
	client := &Client{
		httpClient:     &http.Client{},
		timeout:        DefaultTimeout,
		maxRetries:     DefaultMaxRetries,
		retryBaseDelay: DefaultRetryBaseDelay,
		headers:        NewHeaders(),
		retryPolicy:    NewDefaultRetryPolicy(),
		interceptors:   newInterceptorChain(Interceptors{}),
		requestIDGen:   newRequestID,
		debug:          DefaultDebugConfig(),
	}

	for _, option := range options {
		option(client)
	}

	if err := client.ValidateConfiguration(); err != nil {
		client.validationError = err
	}

	return client
}

// Get performs a GET request against path (relative to BaseURL, or a full
// URL).
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path})
}

// Post performs a POST request. A non-nil body is JSON-encoded unless it is
// []byte, string or io.Reader.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

// GetJSON performs a GET and decodes the response body into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	resp, err := c.Get(ctx, path)
	if err != nil {
		return err
	}
	return resp.JSON(out)
}

// PostJSON performs a POST with a JSON body and decodes the response into
// out.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	resp, err := c.Post(ctx, path, body)
	if err != nil {
		return err
	}
	return resp.JSON(out)
}

// GetTyped is GetJSON returning the response alongside the decoded value.
func (c *Client) GetTyped(ctx context.Context, path string, out any) (*Response, error) {
	resp, err := c.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := resp.JSON(out); err != nil {
		return nil, err
	}
	return resp, nil
}

// PostTyped is PostJSON returning the response alongside the decoded value.
func (c *Client) PostTyped(ctx context.Context, path string, body, out any) (*Response, error) {
	resp, err := c.Post(ctx, path, body)
	if err != nil {
		return nil, err
	}
	if err := resp.JSON(out); err != nil {
		return nil, err
	}
	return resp, nil
}

// AddRequestInterceptor appends a request interceptor. Registration is a
// setup-phase operation; it is lock-guarded, so late registration is safe
// but affects only requests started afterwards.
func (c *Client) AddRequestInterceptor(fn RequestInterceptor) {
	c.interceptors.addRequest(fn)
}

// AddResponseInterceptor appends a response interceptor.
func (c *Client) AddResponseInterceptor(fn ResponseInterceptor) {
	c.interceptors.addResponse(fn)
}

// AddErrorInterceptor appends an error interceptor.
func (c *Client) AddErrorInterceptor(fn ErrorInterceptor) {
	c.interceptors.addError(fn)
}

// Do executes one logical request: merge config, resolve URL and headers,
// run request interceptors, then attempt the call under a per-attempt
// timeout, retrying per the RetryPolicy. Callers receive either a *Response
// or an *Error; raw transport errors never leak.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	if c.validationError != nil {
		return nil, &Error{
			Code:    CodeInvalidConfig,
			Message: "client configuration is invalid",
			Cause:   c.validationError,
		}
	}

	requestID := c.requestIDGen()

	resolved, apiErr := c.resolve(ctx, &req, requestID)
	if apiErr != nil {
		return nil, apiErr
	}

	// Request interceptors run once per logical request; retries reuse
	// their output, so shipped interceptors must be idempotent.
	if err := c.interceptors.applyRequest(ctx, resolved); err != nil {
		return nil, interceptorError(err, resolved, requestID)
	}

	body, apiErr := encodeBody(resolved, requestID)
	if apiErr != nil {
		return nil, apiErr
	}

	endpoint := endpointFromURL(resolved.Path)
	maxRetries := c.maxRetries
	if resolved.MaxRetries != nil {
		maxRetries = *resolved.MaxRetries
	}
	baseDelay := c.retryBaseDelay
	if resolved.RetryBaseDelay != 0 {
		baseDelay = resolved.RetryBaseDelay
	}

	if c.debugEnabled() && c.debug.LogRequests && c.logger != nil {
		c.logger.Debug("Starting request", "requestID", requestID, "method", resolved.Method, "url", resolved.Path)
	}
	if c.metrics != nil {
		c.metrics.RecordRequestStart(resolved.Method, endpoint)
		defer c.metrics.RecordRequestEnd(resolved.Method, endpoint)
	}

	var lastErr *Error
	for attempt := 0; ; attempt++ {
		resp, attemptErr := c.executeAttempt(ctx, resolved, body, requestID, attempt, maxRetries)
		if attemptErr == nil {
			if err := c.interceptors.applyResponse(ctx, resp); err != nil {
				return nil, interceptorError(err, resolved, requestID)
			}
			if c.metrics != nil {
				c.metrics.RecordRequest(resolved.Method, endpoint, resp.Status, time.Since(start))
			}
			if c.debugEnabled() && c.debug.LogResponses && c.logger != nil {
				c.logger.Debug("Request completed", "requestID", requestID, "status", resp.Status, "duration", time.Since(start))
			}
			return resp, nil
		}
		lastErr = attemptErr

		if c.metrics != nil {
			c.metrics.RecordError(errorKind(attemptErr), resolved.Method, endpoint)
		}

		delay, retry := c.retryPolicy.ShouldRetry(attemptErr, attempt, RetryOptions{
			MaxRetries: maxRetries,
			BaseDelay:  baseDelay,
		})
		if !retry {
			break
		}

		if c.metrics != nil {
			c.metrics.RecordRetry(resolved.Method, endpoint, attempt+1)
		}
		if c.debugEnabled() && c.debug.LogRetries && c.logger != nil {
			c.logger.Info("Scheduling retry", "requestID", requestID, "attempt", attempt+1, "maxRetries", maxRetries, "backoff", delay)
		}

		// The backoff sleep must abort when the caller cancels.
		if err := sleepContext(ctx, delay); err != nil {
			lastErr = classifyTransport(resolved, err, requestID, attempt, maxRetries)
			break
		}
	}

	if c.metrics != nil {
		c.metrics.RecordRequest(resolved.Method, endpoint, lastErr.Status, time.Since(start))
	}
	if c.debugEnabled() && c.debug.LogErrors && c.logger != nil {
		c.logger.Warn("Request failed", "requestID", requestID, "error", lastErr.Error())
	}

	if err := c.interceptors.applyError(ctx, lastErr); err != nil {
		return nil, interceptorError(err, resolved, requestID)
	}
	return nil, lastErr
}

// resolve merges the call-level request over the client defaults and
// produces a fully resolved request: absolute URL with query appended,
// merged headers with standard headers injected and the auth header applied
// last.
func (c *Client) resolve(ctx context.Context, req *Request, requestID string) (*Request, *Error) {
	resolved := req.Clone()
	if resolved.Method == "" {
		resolved.Method = http.MethodGet
	}
	if resolved.Timeout == 0 {
		resolved.Timeout = c.timeout
	}

	absURL, err := resolveURL(c.baseURL, resolved.Path, resolved.Query)
	if err != nil {
		return nil, &Error{
			Code:      CodeInvalidURL,
			Message:   err.Error(),
			Cause:     err,
			RequestID: requestID,
			Method:    resolved.Method,
			URL:       resolved.Path,
		}
	}
	resolved.Path = absURL
	resolved.Query = nil

	headers := c.headers.Clone()
	headers.Merge(resolved.Headers)
	if resolved.Body != nil && !headers.Has("Content-Type") && bodyIsJSON(resolved.Body) {
		headers.Set("Content-Type", "application/json")
	}
	if !headers.Has("Accept") {
		headers.Set("Accept", "application/json")
	}
	headers.Set("X-Request-Id", requestID)

	// Auth is applied after the full merge so user headers cannot strip it
	// unless they explicitly re-specify the same key per call.
	if c.auth != nil {
		key, value, err := c.auth.header(ctx)
		if err != nil {
			return nil, &Error{
				Code:      CodeAuth,
				Message:   "resolving credentials failed",
				Cause:     err,
				RequestID: requestID,
				Method:    resolved.Method,
				URL:       resolved.Path,
				Request:   resolved,
			}
		}
		headers.Set(key, value)
	}
	resolved.Headers = headers

	return resolved, nil
}

// executeAttempt runs a single attempt under its own timeout. Expiry
// actively cancels the in-flight transport call via the request context.
func (c *Client) executeAttempt(ctx context.Context, req *Request, body []byte, requestID string, attempt, maxRetries int) (*Response, *Error) {
	attemptCtx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(attemptCtx, req.Method, req.Path, reader)
	if err != nil {
		return nil, &Error{
			Code:      CodeInvalidURL,
			Message:   "building request failed",
			Cause:     err,
			RequestID: requestID,
			Method:    req.Method,
			URL:       req.Path,
			Request:   req,
		}
	}
	req.Headers.Each(func(k, v string) {
		httpReq.Header.Set(k, v)
	})

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransport(req, err, requestID, attempt, maxRetries)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, classifyTransport(req, err, requestID, attempt, maxRetries)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, classifyResponse(req, httpResp, respBody, requestID, attempt, maxRetries)
	}

	return &Response{
		Status:     httpResp.StatusCode,
		StatusText: http.StatusText(httpResp.StatusCode),
		Header:     httpResp.Header,
		Body:       respBody,
		Data:       decodeData(httpResp.Header.Get("Content-Type"), respBody),
		Request:    req,
	}, nil
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}

func (c *Client) debugEnabled() bool {
	return c.debug != nil && c.debug.Enabled
}

// encodeBody serializes the request body once so retries resend identical
// bytes. io.Reader bodies are drained up front for the same reason.
func encodeBody(req *Request, requestID string) ([]byte, *Error) {
	switch body := req.Body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return body, nil
	case json.RawMessage:
		return body, nil
	case string:
		return []byte(body), nil
	case io.Reader:
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, &Error{
				Code:      CodeInvalidBody,
				Message:   "reading request body failed",
				Cause:     err,
				RequestID: requestID,
				Method:    req.Method,
				URL:       req.Path,
				Request:   req,
			}
		}
		return data, nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{
				Code:      CodeInvalidBody,
				Message:   "encoding request body failed",
				Cause:     err,
				RequestID: requestID,
				Method:    req.Method,
				URL:       req.Path,
				Request:   req,
			}
		}
		return data, nil
	}
}

func bodyIsJSON(body any) bool {
	switch body.(type) {
	case []byte, string, io.Reader:
		return false
	case json.RawMessage:
		return true
	default:
		return true
	}
}

// resolveURL joins base and path (path may already be absolute) and appends
// query parameters, skipping nil values.
func resolveURL(base, path string, query map[string]any) (string, error) {
	raw := path
	if !strings.Contains(path, "://") {
		if base == "" {
			return "", fmt.Errorf("relative path %q requires a base URL", path)
		}
		raw = strings.TrimSuffix(base, "/")
		if path != "" && !strings.HasPrefix(path, "/") {
			raw += "/"
		}
		raw += path
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}

	if len(query) > 0 {
		q := u.Query()
		for k, v := range query {
			if v == nil {
				continue
			}
			q.Set(k, fmt.Sprintf("%v", v))
		}
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

func interceptorError(err error, req *Request, requestID string) *Error {
	return &Error{
		Code:      CodeInterceptor,
		Message:   "interceptor aborted the request",
		Cause:     err,
		RequestID: requestID,
		Method:    req.Method,
		URL:       req.Path,
		Request:   req,
	}
}

func errorKind(apiErr *Error) string {
	switch {
	case apiErr.Code == CodeTimeout:
		return "Timeout"
	case apiErr.Status == 0:
		return "Network"
	case apiErr.Status == http.StatusTooManyRequests:
		return "RateLimited"
	case apiErr.Status >= 500:
		return "Server"
	default:
		return "Client"
	}
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// endpointFromURL extracts host+path for metrics labels.
func endpointFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}

	var builder strings.Builder
	builder.WriteString(u.Host)
	if u.Path != "" && u.Path != "/" {
		builder.WriteString(u.Path)
	} else {
		builder.WriteByte('/')
	}
	return builder.String()
}

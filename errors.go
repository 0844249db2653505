package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Machine-readable error codes carried on Error.Code.
const (
	CodeNetwork       = "network_error"
	CodeTimeout       = "timeout"
	CodeCanceled      = "canceled"
	CodeHTTP          = "http_error"
	CodeAuth          = "auth_error"
	CodeInterceptor   = "interceptor_error"
	CodeInvalidURL    = "invalid_url"
	CodeInvalidBody   = "invalid_body"
	CodeInvalidConfig = "invalid_config"
)

// Error is the only error type raised past the client boundary. Status is 0
// for pure transport failures (DNS, connection, per-attempt timeout).
// Retryability is fixed at classification time and never recomputed inside
// the retry loop.
type Error struct {
	Status     int
	StatusText string
	Code       string
	Message    string
	Details    any
	Cause      error
	RequestID  string
	Method     string
	URL        string
	Attempt    int
	MaxRetries int
	Request    *Request
	RetryAfter time.Duration
	// Raw is the underlying transport response for a non-2xx outcome. Its
	// body has already been drained into Details.
	Raw *http.Response

	retryable bool
}

// RetryableStatus is the closed retryability rule: transport failures
// (status 0), 429 and 5xx retry; every other status is terminal. The rule
// is independent of HTTP method.
func RetryableStatus(status int) bool {
	return status == 0 || status == http.StatusTooManyRequests || status >= 500
}

// IsNetworkError reports a transport failure or server-side error.
func (e *Error) IsNetworkError() bool {
	return e.Status == 0 || e.Status >= 500
}

// IsClientError reports a 4xx status.
func (e *Error) IsClientError() bool {
	return e.Status >= 400 && e.Status < 500
}

// IsAuthError reports a 401 or 403 status.
func (e *Error) IsAuthError() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// IsRetryable reports the verdict computed when the error was classified.
func (e *Error) IsRetryable() bool {
	return e.retryable
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var msg string
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Cause)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.RequestID != "" {
		msg = fmt.Sprintf("[%s] %s", e.RequestID, msg)
	}
	if e.Attempt > 0 {
		msg = fmt.Sprintf("%s (attempt %d/%d)", msg, e.Attempt, e.MaxRetries)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches errors with the same Code for errors.Is.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// IsTransient reports whether err is an *Error classified as retryable.
func IsTransient(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.IsRetryable()
	}
	return false
}

// errorBody is the defensively-parsed shape of structured error payloads.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details"`
}

// classifyTransport turns a transport-level failure into a status-0 Error.
// Deadline expiry maps to CodeTimeout; caller cancellation maps to
// CodeCanceled and is never retried.
func classifyTransport(req *Request, cause error, requestID string, attempt, maxRetries int) *Error {
	code := CodeNetwork
	message := "network request failed"
	retryable := true

	switch {
	case errors.Is(cause, context.DeadlineExceeded):
		code = CodeTimeout
		message = "request timed out"
	case errors.Is(cause, context.Canceled):
		code = CodeCanceled
		message = "request canceled"
		retryable = false
	}

	return &Error{
		Status:     0,
		Code:       code,
		Message:    message,
		Cause:      cause,
		RequestID:  requestID,
		Method:     req.Method,
		URL:        req.Path,
		Attempt:    attempt,
		MaxRetries: maxRetries,
		Request:    req,
		retryable:  retryable,
	}
}

// classifyResponse turns a non-2xx response into an Error, parsing the body
// defensively: JSON content types yield message/code/details, anything else
// is kept as raw text.
func classifyResponse(req *Request, resp *http.Response, body []byte, requestID string, attempt, maxRetries int) *Error {
	apiErr := &Error{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Code:       CodeHTTP,
		Message:    fmt.Sprintf("request failed with status %d", resp.StatusCode),
		RequestID:  requestID,
		Method:     req.Method,
		URL:        req.Path,
		Attempt:    attempt,
		MaxRetries: maxRetries,
		Request:    req,
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		Raw:        resp,
		retryable:  RetryableStatus(resp.StatusCode),
	}

	if isJSONContentType(resp.Header.Get("Content-Type")) {
		var parsed errorBody
		if err := json.Unmarshal(body, &parsed); err == nil {
			if parsed.Message != "" {
				apiErr.Message = parsed.Message
			} else if parsed.Error != "" {
				apiErr.Message = parsed.Error
			}
			if parsed.Code != "" {
				apiErr.Code = parsed.Code
			}
			apiErr.Details = parsed.Details
			return apiErr
		}
	}
	if len(body) > 0 {
		apiErr.Details = string(body)
	}
	return apiErr
}

// parseRetryAfter parses a Retry-After header in either delay-seconds or
// HTTP-date form. The result is capped at one hour.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		if seconds > 0 {
			delay := time.Duration(seconds) * time.Second
			if delay > time.Hour {
				delay = time.Hour
			}
			return delay
		}
		return 0
	}

	if t, err := http.ParseTime(value); err == nil {
		delay := time.Until(t)
		if delay > 0 && delay <= time.Hour {
			return delay
		}
	}

	return 0
}

func isJSONContentType(contentType string) bool {
	mediaType := strings.TrimSpace(strings.Split(contentType, ";")[0])
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

package apiclient

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestErrorFormatting(t *testing.T) {
	plain := &Error{Code: CodeHTTP, Message: "request failed with status 500"}
	if plain.Error() != "http_error: request failed with status 500" {
		t.Errorf("Unexpected message: %q", plain.Error())
	}

	cause := errors.New("connection refused")
	withCause := &Error{Code: CodeNetwork, Message: "network request failed", Cause: cause}
	want := "network_error: network request failed (connection refused)"
	if withCause.Error() != want {
		t.Errorf("Expected %q, got %q", want, withCause.Error())
	}

	withContext := &Error{
		Code:       CodeTimeout,
		Message:    "request timed out",
		RequestID:  "req-1",
		Attempt:    2,
		MaxRetries: 3,
	}
	want = "[req-1] timeout: request timed out (attempt 2/3)"
	if withContext.Error() != want {
		t.Errorf("Expected %q, got %q", want, withContext.Error())
	}
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		status  int
		network bool
		client  bool
		auth    bool
	}{
		{0, true, false, false},
		{400, false, true, false},
		{401, false, true, true},
		{403, false, true, true},
		{404, false, true, false},
		{429, false, true, false},
		{500, true, false, false},
		{503, true, false, false},
	}

	for _, tt := range tests {
		e := &Error{Status: tt.status}
		if e.IsNetworkError() != tt.network {
			t.Errorf("status %d: IsNetworkError = %v, want %v", tt.status, e.IsNetworkError(), tt.network)
		}
		if e.IsClientError() != tt.client {
			t.Errorf("status %d: IsClientError = %v, want %v", tt.status, e.IsClientError(), tt.client)
		}
		if e.IsAuthError() != tt.auth {
			t.Errorf("status %d: IsAuthError = %v, want %v", tt.status, e.IsAuthError(), tt.auth)
		}
	}
}

func TestErrorUnwrapAndIs(t *testing.T) {
	cause := errors.New("boom")
	err := &Error{Code: CodeNetwork, Message: "network request failed", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to reach the cause")
	}
	if !errors.Is(err, &Error{Code: CodeNetwork}) {
		t.Error("Expected errors with the same code to match")
	}
	if errors.Is(err, &Error{Code: CodeTimeout}) {
		t.Error("Expected errors with different codes not to match")
	}
}

func TestIsTransient(t *testing.T) {
	if !IsTransient(&Error{Status: 503, retryable: true}) {
		t.Error("Expected retryable error to be transient")
	}
	if IsTransient(&Error{Status: 404}) {
		t.Error("Expected terminal error not to be transient")
	}
	if IsTransient(errors.New("plain")) {
		t.Error("Expected plain error not to be transient")
	}
	if IsTransient(nil) {
		t.Error("Expected nil not to be transient")
	}
}

func TestClassifyResponseParsesStructuredBody(t *testing.T) {
	req := &Request{Method: http.MethodGet, Path: "https://api.example.com/things"}
	resp := &http.Response{
		StatusCode: http.StatusUnprocessableEntity,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
	body := []byte(`{"message":"name is required","code":"validation_failed","details":{"field":"name"}}`)

	apiErr := classifyResponse(req, resp, body, "req-9", 0, 3)

	if apiErr.Message != "name is required" {
		t.Errorf("Expected parsed message, got %q", apiErr.Message)
	}
	if apiErr.Code != "validation_failed" {
		t.Errorf("Expected parsed code, got %q", apiErr.Code)
	}
	details, ok := apiErr.Details.(map[string]any)
	if !ok || details["field"] != "name" {
		t.Errorf("Expected structured details, got %#v", apiErr.Details)
	}
	if apiErr.IsRetryable() {
		t.Error("422 must not be retryable")
	}
}

func TestClassifyResponseKeepsRawTextBody(t *testing.T) {
	req := &Request{Method: http.MethodGet, Path: "https://api.example.com/things"}
	resp := &http.Response{
		StatusCode: http.StatusBadGateway,
		Header:     http.Header{"Content-Type": []string{"text/html"}},
	}

	apiErr := classifyResponse(req, resp, []byte("<html>bad gateway</html>"), "req-9", 1, 3)

	if apiErr.Code != CodeHTTP {
		t.Errorf("Expected generic code, got %q", apiErr.Code)
	}
	if apiErr.Details != "<html>bad gateway</html>" {
		t.Errorf("Expected raw body preserved, got %#v", apiErr.Details)
	}
	if !apiErr.IsRetryable() {
		t.Error("502 must be retryable")
	}
}

func TestParseRetryAfterSeconds(t *testing.T) {
	if got := parseRetryAfter("30"); got != 30*time.Second {
		t.Errorf("Expected 30s, got %v", got)
	}
	if got := parseRetryAfter(""); got != 0 {
		t.Errorf("Expected 0 for empty header, got %v", got)
	}
	if got := parseRetryAfter("-5"); got != 0 {
		t.Errorf("Expected 0 for negative value, got %v", got)
	}
	if got := parseRetryAfter("999999"); got != time.Hour {
		t.Errorf("Expected cap at 1h, got %v", got)
	}
	if got := parseRetryAfter(time.Now().Add(2*time.Minute).UTC().Format(http.TimeFormat)); got <= 0 || got > 2*time.Minute {
		t.Errorf("Expected HTTP-date parsing within bounds, got %v", got)
	}
}

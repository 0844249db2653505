package apiclient

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestValidationCatchesBadConfig(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"negative retries", []Option{WithMaxRetries(-1)}},
		{"zero timeout", []Option{WithTimeout(0)}},
		{"excessive timeout", []Option{WithTimeout(time.Hour)}},
		{"negative base delay", []Option{WithRetryBaseDelay(-time.Second)}},
		{"nil retry policy", []Option{WithRetryPolicy(nil)}},
		{"nil request interceptor", []Option{WithRequestInterceptor(nil)}},
		{"debug without logger", []Option{WithDebug()}},
		{"invalid base url", []Option{WithBaseURL("http://bad url\x7f")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := New(tt.opts...)
			if client.IsValid() {
				t.Error("Expected validation to fail")
			}
			if client.ValidationError() == nil {
				t.Error("Expected a validation error")
			}
		})
	}
}

func TestValidClientPassesValidation(t *testing.T) {
	client := New(
		WithBaseURL("https://api.example.com"),
		WithMaxRetries(5),
		WithTimeout(30*time.Second),
		WithSimpleLogger(),
	)
	if !client.IsValid() {
		t.Fatalf("Expected valid configuration, got %v", client.ValidationError())
	}
}

func TestInvalidClientFailsFastOnRequest(t *testing.T) {
	client := New(WithMaxRetries(-1))

	_, err := client.Get(context.Background(), "https://api.example.com/x")
	if err == nil {
		t.Fatal("Expected error from invalid client")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *Error, got %T", err)
	}
	if apiErr.Code != CodeInvalidConfig {
		t.Errorf("Expected code %q, got %q", CodeInvalidConfig, apiErr.Code)
	}
}

func TestConfigMergeSemantics(t *testing.T) {
	base := Config{
		BaseURL:        "https://api.example.com",
		Timeout:        10 * time.Second,
		MaxRetries:     Retries(3),
		RetryBaseDelay: time.Second,
		Headers:        map[string]string{"Accept": "application/json", "X-Team": "core"},
	}

	merged := base.merge(&Config{
		Timeout:    5 * time.Second,
		MaxRetries: Retries(0),
		Headers:    map[string]string{"X-Team": "edge"},
	})

	if merged.BaseURL != base.BaseURL {
		t.Errorf("Expected unset override to inherit, got %q", merged.BaseURL)
	}
	if merged.Timeout != 5*time.Second {
		t.Errorf("Expected timeout override, got %v", merged.Timeout)
	}
	if merged.MaxRetries == nil || *merged.MaxRetries != 0 {
		t.Errorf("Expected explicit zero retries to win, got %v", merged.MaxRetries)
	}
	if merged.Headers["X-Team"] != "edge" || merged.Headers["Accept"] != "application/json" {
		t.Errorf("Expected key-wise header merge, got %v", merged.Headers)
	}
	if base.Headers["X-Team"] != "core" {
		t.Error("merge mutated the base config")
	}
}

func TestConfigMergeNilOverrides(t *testing.T) {
	base := Config{BaseURL: "https://api.example.com"}
	merged := base.merge(nil)
	if merged.BaseURL != base.BaseURL {
		t.Errorf("Expected identity merge, got %+v", merged)
	}
}

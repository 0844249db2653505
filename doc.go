// Package apiclient provides a configurable HTTP request engine built around
// a composable interceptor pipeline:
//
//   - Retries with pluggable backoff strategies (deterministic exponential by default)
//   - Request / response / error interceptors applied in registration order
//   - Declarative auth (bearer / API key / basic) with lazy credential resolution
//   - Per-attempt timeouts with active cancellation of in-flight requests
//   - A typed error taxonomy with a closed retryability rule
//   - A preset registry that caches constructed clients by effective config
//   - Prometheus metrics and lightweight structured debug logging
//
// Design goals:
//   - Small surface area: functional options configure everything
//   - Safe concurrent use of a single *Client instance
//   - No raw transport errors past the client boundary: callers see *Error or *Response
//   - Extensibility via interceptors and a pluggable RetryPolicy
//
// Typical usage:
//
//	client := apiclient.New(
//	    apiclient.WithBaseURL("https://api.example.com"),
//	    apiclient.WithMaxRetries(3),
//	    apiclient.WithAuth(apiclient.BearerAuth{Tokens: apiclient.StaticToken("t0k3n")}),
//	    apiclient.WithSimpleLogger(),
//	)
//	resp, err := client.Get(ctx, "/data")
//
// Retryability is a pure function of status: transport failures (status 0),
// 429 and 5xx retry; every other 4xx fails fast. Override the policy with
// WithRetryPolicy. For shared, named configurations use NewRegistry, which
// merges overrides over presets and hands out cached client instances.
package apiclient

package apiclient

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Option configures a Client at construction time.
type Option func(*Client)

// WithBaseURL sets the base URL that relative request paths resolve
// against.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMaxRetries sets the default retry budget (re-attempts after the
// first try).
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryBaseDelay sets the first retry delay; subsequent delays grow per
// the retry policy's backoff strategy.
func WithRetryBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = d
	}
}

// WithRetryPolicy replaces the retry decision function.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Client) {
		c.retryPolicy = policy
	}
}

// WithHeader sets one default header.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// WithHeaders merges default headers (inserted in sorted key order).
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.headers.Merge(HeadersFrom(headers))
	}
}

// WithAuth sets the auth scheme applied to every request.
func WithAuth(auth AuthConfig) Option {
	return func(c *Client) {
		c.auth = auth
	}
}

// WithInterceptors seeds the interceptor pipeline.
func WithInterceptors(interceptors Interceptors) Option {
	return func(c *Client) {
		c.interceptors = newInterceptorChain(interceptors)
	}
}

// WithRequestInterceptor appends a request interceptor.
func WithRequestInterceptor(fn RequestInterceptor) Option {
	return func(c *Client) {
		c.interceptors.addRequest(fn)
	}
}

// WithResponseInterceptor appends a response interceptor.
func WithResponseInterceptor(fn ResponseInterceptor) Option {
	return func(c *Client) {
		c.interceptors.addResponse(fn)
	}
}

// WithErrorInterceptor appends an error interceptor.
func WithErrorInterceptor(fn ErrorInterceptor) Option {
	return func(c *Client) {
		c.interceptors.addError(fn)
	}
}

// WithHTTPClient sets a custom HTTP client for transport execution.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTransport sets a custom transport on the client's http.Client. Useful
// for tests that fake the network.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

// WithRequestIDGenerator replaces the X-Request-ID generator (UUIDs by
// default).
func WithRequestIDGenerator(gen func() string) Option {
	return func(c *Client) {
		c.requestIDGen = gen
	}
}

// WithMetrics enables Prometheus metrics on the default registerer.
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsCollector sets a custom metrics collector.
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// WithDebug enables debug logging with default configuration.
func WithDebug() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
	}
}

// WithDebugConfig sets custom debug configuration.
func WithDebugConfig(config *DebugConfig) Option {
	return func(c *Client) {
		c.debug = config
	}
}

// WithLogger sets a custom logger for debug output.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithSimpleLogger enables debug logging with a console logger.
func WithSimpleLogger() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
		c.logger = NewSimpleLogger()
	}
}

// ValidateConfiguration validates the client configuration and returns an
// error if invalid.
func (c *Client) ValidateConfiguration() error {
	var problems []string

	problems = append(problems, c.validateCoreConfig()...)
	problems = append(problems, c.validateRetryConfig()...)
	problems = append(problems, c.validateInterceptorConfig()...)
	problems = append(problems, c.validateDebugConfig()...)

	if len(problems) > 0 {
		return &Error{
			Code:    CodeInvalidConfig,
			Message: "configuration validation failed",
			Cause:   fmt.Errorf("validation errors: %v", problems),
		}
	}

	return nil
}

func (c *Client) validateCoreConfig() []string {
	var problems []string

	if c.httpClient == nil {
		problems = append(problems, "HTTP client cannot be nil")
	}
	if c.baseURL != "" {
		if _, err := url.Parse(c.baseURL); err != nil {
			problems = append(problems, fmt.Sprintf("baseURL is not a valid URL: %v", err))
		}
	}
	if c.timeout <= 0 {
		problems = append(problems, "timeout must be positive")
	}
	if c.timeout > 10*time.Minute {
		problems = append(problems, "timeout > 10m may cause requests to hang for too long")
	}
	if c.requestIDGen == nil {
		problems = append(problems, "request ID generator cannot be nil")
	}

	return problems
}

func (c *Client) validateRetryConfig() []string {
	var problems []string

	if c.maxRetries < 0 {
		problems = append(problems, "maxRetries must be non-negative")
	}
	if c.maxRetries > 100 {
		problems = append(problems, "maxRetries > 100 may cause excessive resource usage")
	}
	if c.retryBaseDelay < 0 {
		problems = append(problems, "retryBaseDelay must be non-negative")
	}
	if c.retryBaseDelay > 10*time.Minute {
		problems = append(problems, "retryBaseDelay > 10m may cause very long delays")
	}
	if c.retryPolicy == nil {
		problems = append(problems, "retry policy cannot be nil")
	}

	return problems
}

func (c *Client) validateInterceptorConfig() []string {
	var problems []string

	c.interceptors.mu.RLock()
	defer c.interceptors.mu.RUnlock()

	for i, fn := range c.interceptors.request {
		if fn == nil {
			problems = append(problems, fmt.Sprintf("request interceptor[%d] cannot be nil", i))
		}
	}
	for i, fn := range c.interceptors.response {
		if fn == nil {
			problems = append(problems, fmt.Sprintf("response interceptor[%d] cannot be nil", i))
		}
	}
	for i, fn := range c.interceptors.errs {
		if fn == nil {
			problems = append(problems, fmt.Sprintf("error interceptor[%d] cannot be nil", i))
		}
	}

	return problems
}

func (c *Client) validateDebugConfig() []string {
	var problems []string

	if c.debug != nil && c.debug.Enabled && c.logger == nil {
		problems = append(problems, "logger must be set when debug is enabled")
	}

	return problems
}

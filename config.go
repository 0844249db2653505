package apiclient

import (
	"time"

	"github.com/google/uuid"
)

// Defaults applied by New when a value is left unspecified.
const (
	DefaultTimeout        = 10 * time.Second
	DefaultMaxRetries     = 3
	DefaultRetryBaseDelay = 1 * time.Second
)

// Request describes one logical call. A fresh merged copy is produced per
// request; the client never mutates the caller's value. Zero fields inherit
// the client defaults (MaxRetries is a pointer so an explicit 0 can disable
// retries).
type Request struct {
	Method string
	// Path is relative to the client's BaseURL, or a complete URL. After
	// resolution it holds the absolute URL including query parameters.
	Path    string
	Headers *Headers
	// Query parameters are appended to the URL; nil values are skipped.
	Query map[string]any
	// Body is JSON-encoded unless it is []byte, string or io.Reader.
	Body           any
	Timeout        time.Duration
	MaxRetries     *int
	RetryBaseDelay time.Duration
}

// Clone returns a deep-enough copy: headers are cloned, the query map is
// copied, the body is shared.
func (r *Request) Clone() *Request {
	out := *r
	if r.Headers != nil {
		out.Headers = r.Headers.Clone()
	}
	if r.Query != nil {
		out.Query = make(map[string]any, len(r.Query))
		for k, v := range r.Query {
			out.Query[k] = v
		}
	}
	if r.MaxRetries != nil {
		n := *r.MaxRetries
		out.MaxRetries = &n
	}
	return &out
}

// Config is the declarative client configuration used by Registry presets
// and overrides. New expands it to functional options; each Client owns its
// copy exclusively.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     *int
	RetryBaseDelay time.Duration
	Headers        map[string]string
	Auth           AuthConfig
	Interceptors   Interceptors
}

// merge overlays over onto the receiver: scalars override when set, headers
// merge key-wise with over winning, interceptor lists concatenate with the
// receiver's entries first.
func (c Config) merge(over *Config) Config {
	if over == nil {
		return c
	}
	out := c
	if over.BaseURL != "" {
		out.BaseURL = over.BaseURL
	}
	if over.Timeout != 0 {
		out.Timeout = over.Timeout
	}
	if over.MaxRetries != nil {
		n := *over.MaxRetries
		out.MaxRetries = &n
	}
	if over.RetryBaseDelay != 0 {
		out.RetryBaseDelay = over.RetryBaseDelay
	}
	if len(over.Headers) > 0 {
		merged := make(map[string]string, len(c.Headers)+len(over.Headers))
		for k, v := range c.Headers {
			merged[k] = v
		}
		for k, v := range over.Headers {
			merged[k] = v
		}
		out.Headers = merged
	}
	if over.Auth != nil {
		out.Auth = over.Auth
	}
	if !over.Interceptors.isEmpty() {
		out.Interceptors = c.Interceptors.merge(over.Interceptors)
	}
	return out
}

// options expands the config into the option list understood by New. Only
// set fields are emitted so earlier options survive.
func (c Config) options() []Option {
	var opts []Option
	if c.BaseURL != "" {
		opts = append(opts, WithBaseURL(c.BaseURL))
	}
	if c.Timeout != 0 {
		opts = append(opts, WithTimeout(c.Timeout))
	}
	if c.MaxRetries != nil {
		opts = append(opts, WithMaxRetries(*c.MaxRetries))
	}
	if c.RetryBaseDelay != 0 {
		opts = append(opts, WithRetryBaseDelay(c.RetryBaseDelay))
	}
	if len(c.Headers) > 0 {
		opts = append(opts, WithHeaders(c.Headers))
	}
	if c.Auth != nil {
		opts = append(opts, WithAuth(c.Auth))
	}
	if !c.Interceptors.isEmpty() {
		opts = append(opts, WithInterceptors(c.Interceptors))
	}
	return opts
}

// Retries is a convenience for Config/Request literals with an explicit
// retry count.
func Retries(n int) *int {
	return &n
}

// DebugConfig gates per-concern debug logging. It never affects request
// behavior, only log noise.
type DebugConfig struct {
	Enabled      bool
	LogRequests  bool
	LogRetries   bool
	LogResponses bool
	LogErrors    bool
}

// DefaultDebugConfig enables all concerns but leaves debug off until
// WithDebug is applied.
func DefaultDebugConfig() *DebugConfig {
	return &DebugConfig{
		LogRequests:  true,
		LogRetries:   true,
		LogResponses: true,
		LogErrors:    true,
	}
}

// newRequestID is the default request-ID generator used for the
// X-Request-ID correlation header.
func newRequestID() string {
	return uuid.NewString()
}

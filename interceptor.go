package apiclient

import (
	"context"
	"sync"
)

// RequestInterceptor transforms the resolved request before network
// execution. Interceptors run sequentially in registration order; each sees
// the previous interceptor's output. A non-nil error aborts the call.
// Because retries reuse the intercepted request, interceptors must be
// idempotent.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor transforms a successful response before it is
// returned. A non-nil error aborts the call and supersedes the response.
type ResponseInterceptor func(ctx context.Context, resp *Response) error

// ErrorInterceptor observes or transforms the classified error after
// retries are exhausted. A non-nil return supersedes the original error.
type ErrorInterceptor func(ctx context.Context, apiErr *Error) error

// Interceptors bundles the three ordered lists for declarative
// configuration. Merging concatenates lists, base entries first, so
// cross-cutting behavior is never dropped by an override.
type Interceptors struct {
	Request  []RequestInterceptor
	Response []ResponseInterceptor
	Error    []ErrorInterceptor
}

func (i Interceptors) merge(over Interceptors) Interceptors {
	return Interceptors{
		Request:  append(append([]RequestInterceptor{}, i.Request...), over.Request...),
		Response: append(append([]ResponseInterceptor{}, i.Response...), over.Response...),
		Error:    append(append([]ErrorInterceptor{}, i.Error...), over.Error...),
	}
}

func (i Interceptors) isEmpty() bool {
	return len(i.Request) == 0 && len(i.Response) == 0 && len(i.Error) == 0
}

// interceptorChain holds the client's interceptor lists. Registration is
// expected during setup; the lock makes late registration safe with
// in-flight traffic, which reads an immutable snapshot.
type interceptorChain struct {
	mu       sync.RWMutex
	request  []RequestInterceptor
	response []ResponseInterceptor
	errs     []ErrorInterceptor
}

func newInterceptorChain(base Interceptors) *interceptorChain {
	return &interceptorChain{
		request:  append([]RequestInterceptor{}, base.Request...),
		response: append([]ResponseInterceptor{}, base.Response...),
		errs:     append([]ErrorInterceptor{}, base.Error...),
	}
}

func (c *interceptorChain) addRequest(fn RequestInterceptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.request = append(c.request, fn)
}

func (c *interceptorChain) addResponse(fn ResponseInterceptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.response = append(c.response, fn)
}

func (c *interceptorChain) addError(fn ErrorInterceptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, fn)
}

// applyRequest runs every request interceptor exactly once, in order.
func (c *interceptorChain) applyRequest(ctx context.Context, req *Request) error {
	c.mu.RLock()
	chain := c.request
	c.mu.RUnlock()

	for _, fn := range chain {
		if err := fn(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

func (c *interceptorChain) applyResponse(ctx context.Context, resp *Response) error {
	c.mu.RLock()
	chain := c.response
	c.mu.RUnlock()

	for _, fn := range chain {
		if err := fn(ctx, resp); err != nil {
			return err
		}
	}
	return nil
}

func (c *interceptorChain) applyError(ctx context.Context, apiErr *Error) error {
	c.mu.RLock()
	chain := c.errs
	c.mu.RUnlock()

	for _, fn := range chain {
		if err := fn(ctx, apiErr); err != nil {
			return err
		}
	}
	return nil
}

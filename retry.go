package apiclient

import (
	"time"

	"github.com/dongdada29/antd-next-demo-sub001/internal/backoff"
)

// RetryOptions carries the per-request retry budget into the policy. The
// client owns the actual sleep and the retry loop; a policy is purely a
// decision function.
type RetryOptions struct {
	// MaxRetries is the number of re-attempts allowed after the first try.
	MaxRetries int
	// BaseDelay seeds the backoff sequence.
	BaseDelay time.Duration
}

// RetryPolicy decides whether a failed attempt is re-tried and after what
// delay. attempt starts at 0 for the first retry. Implementations must be
// safe for concurrent use.
type RetryPolicy interface {
	ShouldRetry(apiErr *Error, attempt int, opts RetryOptions) (time.Duration, bool)
}

// BackoffStrategy selects the delay-growth algorithm for DefaultRetryPolicy.
type BackoffStrategy int

const (
	// Exponential doubles the delay each attempt with no jitter. The
	// sequence base, 2*base, 4*base, ... is fully deterministic.
	Exponential BackoffStrategy = iota
	// ExponentialJitter adds uniform jitter on top of exponential growth.
	ExponentialJitter
	// DecorrelatedJitter samples delays AWS-style from [base, base*3^n].
	DecorrelatedJitter
)

// DefaultRetryPolicy retries iff the error was classified retryable and the
// budget is not exhausted. Retryability is a pure function of status,
// independent of HTTP method; wrap or replace the policy to add
// method-awareness. A server-supplied Retry-After delay, when present on
// the error, takes precedence over the computed backoff.
type DefaultRetryPolicy struct {
	MaxDelay   time.Duration
	Multiplier float64
	Jitter     float64

	strategy backoff.Strategy
}

// NewDefaultRetryPolicy returns the deterministic doubling policy used by
// new clients: multiplier 2, no jitter, delays capped at five minutes.
func NewDefaultRetryPolicy() *DefaultRetryPolicy {
	return NewDefaultRetryPolicyWithStrategy(Exponential)
}

// NewDefaultRetryPolicyWithStrategy returns a policy using the given
// backoff strategy. Jitter defaults to 0.1 for the jittered strategies.
func NewDefaultRetryPolicyWithStrategy(strategy BackoffStrategy) *DefaultRetryPolicy {
	p := &DefaultRetryPolicy{
		MaxDelay:   5 * time.Minute,
		Multiplier: 2.0,
	}
	switch strategy {
	case ExponentialJitter:
		p.Jitter = 0.1
		p.strategy = backoff.ExponentialJitterStrategy{}
	case DecorrelatedJitter:
		p.Jitter = 0.1
		p.strategy = backoff.DecorrelatedJitterStrategy{}
	default:
		p.strategy = backoff.ExponentialStrategy{}
	}
	return p
}

// ShouldRetry implements RetryPolicy.
func (p *DefaultRetryPolicy) ShouldRetry(apiErr *Error, attempt int, opts RetryOptions) (time.Duration, bool) {
	if attempt >= opts.MaxRetries {
		return 0, false
	}
	if apiErr == nil || !apiErr.IsRetryable() {
		return 0, false
	}

	if apiErr.RetryAfter > 0 {
		return apiErr.RetryAfter, true
	}
	return p.delay(attempt, opts.BaseDelay), true
}

func (p *DefaultRetryPolicy) delay(attempt int, base time.Duration) time.Duration {
	strategy := p.strategy
	if strategy == nil {
		strategy = backoff.ExponentialStrategy{}
	}
	multiplier := p.Multiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}
	return strategy.Delay(attempt, base, p.MaxDelay, multiplier, p.Jitter)
}

// RetryPolicyFunc adapts a function to the RetryPolicy interface.
type RetryPolicyFunc func(apiErr *Error, attempt int, opts RetryOptions) (time.Duration, bool)

// ShouldRetry implements RetryPolicy.
func (f RetryPolicyFunc) ShouldRetry(apiErr *Error, attempt int, opts RetryOptions) (time.Duration, bool) {
	return f(apiErr, attempt, opts)
}

package backoff

import (
	"math/rand"
	"time"
)

// Strategy computes the delay before a retry attempt. Implementations must
// be safe for concurrent use.
type Strategy interface {
	// Delay returns the backoff for attempt (0 = first retry) given the
	// base delay, cap, growth multiplier and jitter fraction.
	Delay(attempt int, base, max time.Duration, multiplier, jitter float64) time.Duration
}

// ExponentialStrategy grows the delay as base * multiplier^attempt with no
// randomness. The jitter parameter is ignored, which keeps the sequence
// fully deterministic for testing and reasoning about retry budgets.
type ExponentialStrategy struct{}

// Delay implements Strategy.
func (ExponentialStrategy) Delay(attempt int, base, max time.Duration, multiplier, _ float64) time.Duration {
	return exponential(attempt, base, max, multiplier)
}

// ExponentialJitterStrategy adds uniform jitter on top of exponential
// growth: delay in [d, d*(1+jitter)] capped at max.
type ExponentialJitterStrategy struct{}

// Delay implements Strategy.
func (ExponentialJitterStrategy) Delay(attempt int, base, max time.Duration, multiplier, jitter float64) time.Duration {
	delay := exponential(attempt, base, max, multiplier)

	jitter = clampJitter(jitter)
	if jitter > 0 {
		extra := time.Duration(float64(delay) * jitter * rand.Float64())
		if delay+extra > max {
			delay = max
		} else {
			delay += extra
		}
	}
	return delay
}

// DecorrelatedJitterStrategy implements AWS-style decorrelated jitter:
// a delay sampled uniformly from [base, min(max, base*3^attempt)]. It
// produces smoother tail latencies than exponential jitter under load.
type DecorrelatedJitterStrategy struct{}

// Delay implements Strategy.
func (DecorrelatedJitterStrategy) Delay(attempt int, base, max time.Duration, _, _ float64) time.Duration {
	if attempt <= 0 {
		return base
	}
	if attempt > 10 {
		attempt = 10
	}

	lower := float64(base)
	upper := lower * Pow(3.0, attempt)

	maxFloat := float64(max)
	if upper > maxFloat || upper < 0 {
		upper = maxFloat
	}
	if upper < lower {
		upper = lower
	}

	delay := time.Duration(lower + rand.Float64()*(upper-lower))
	if delay < 0 || delay > max {
		delay = max
	}
	return delay
}

func exponential(attempt int, base, max time.Duration, multiplier float64) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	// Cap the exponent so the float math cannot overflow.
	if attempt > 30 {
		attempt = 30
	}

	delay := time.Duration(float64(base) * Pow(multiplier, attempt))
	if delay < 0 || (max > 0 && delay > max) {
		delay = max
	}
	return delay
}

func clampJitter(jitter float64) float64 {
	if jitter < 0 {
		return 0
	}
	if jitter > 1 {
		return 1
	}
	return jitter
}

// Pow computes base^exponent by repeated multiplication, avoiding math.Pow
// edge cases for the small integer exponents used here.
func Pow(base float64, exponent int) float64 {
	result := 1.0
	for i := 0; i < exponent; i++ {
		result *= base
	}
	return result
}

package errors

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig controls how often and how patiently a failing operation is
// repeated. A zero MaxAttempts means a single attempt.
type RetryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	// Jitter spreads each delay by up to this fraction in either direction.
	Jitter float64
}

// DefaultRetry suits a broker write: three attempts within about a second.
var DefaultRetry = RetryConfig{
	MaxAttempts:    3,
	InitialBackoff: 100 * time.Millisecond,
	MaxBackoff:     2 * time.Second,
	BackoffFactor:  2,
	Jitter:         0.1,
}

// RetryOption adjusts a RetryConfig.
type RetryOption func(*RetryConfig)

func WithMaxAttempts(n int) RetryOption {
	return func(c *RetryConfig) { c.MaxAttempts = n }
}

func WithInitialBackoff(d time.Duration) RetryOption {
	return func(c *RetryConfig) { c.InitialBackoff = d }
}

func WithJitter(j float64) RetryOption {
	return func(c *RetryConfig) { c.Jitter = j }
}

// NewRetryConfig applies opts on top of DefaultRetry.
func NewRetryConfig(opts ...RetryOption) RetryConfig {
	c := DefaultRetry
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Backoff returns the un-jittered delay after the given number of
// consecutive failures (1-based): InitialBackoff grown by BackoffFactor per
// failure and capped at MaxBackoff.
func (c RetryConfig) Backoff(failures int) time.Duration {
	failures = max(failures, 1)
	factor := max(c.BackoffFactor, 1)
	d := float64(c.InitialBackoff) * math.Pow(factor, float64(failures-1))
	if c.MaxBackoff > 0 && d > float64(c.MaxBackoff) {
		return c.MaxBackoff
	}
	return time.Duration(d)
}

func (c RetryConfig) jittered(failures int) time.Duration {
	d := c.Backoff(failures)
	if c.Jitter <= 0 {
		return d
	}
	return time.Duration(float64(d) * (1 + c.Jitter*(rand.Float64()*2-1)))
}

// Retry calls fn until it succeeds, fails permanently, runs out of
// attempts or ctx ends. It returns the number of calls made. A non-nil
// error is always an *OpError labelled with op.
func Retry(ctx context.Context, c RetryConfig, op string, fn func(context.Context) error) (int, error) {
	attempts := max(c.MaxAttempts, 1)
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return n - 1, &OpError{Op: op, Err: err, Category: CategoryPermanent, Attempts: n - 1}
		}
		err := fn(ctx)
		if err == nil {
			return n, nil
		}
		cat := Categorize(err)
		if cat == CategoryPermanent || n == attempts {
			if inner, ok := err.(*OpError); ok {
				err = inner.Err
			}
			return n, &OpError{Op: op, Err: err, Category: cat, Attempts: n}
		}

		t := time.NewTimer(c.jittered(n))
		select {
		case <-ctx.Done():
			t.Stop()
			return n, &OpError{Op: op, Err: ctx.Err(), Category: CategoryPermanent, Attempts: n}
		case <-t.C:
		}
	}
}

package llm

import (
	"context"
	"time"
)

// RetryPolicy controls bounded retry of transient backend failures.
// It is injectable so tests can run with zero delay.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts including the first.
	MaxAttempts int
	// BaseDelay is the backoff before the first retry; each subsequent
	// retry doubles it.
	BaseDelay time.Duration
	// Retryable decides whether an error is worth another attempt.
	Retryable func(error) bool
}

// DefaultRetryPolicy returns the production policy: three attempts with
// 500ms doubling backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		Retryable:   Retryable,
	}
}

// NoRetry returns a single-attempt policy.
func NoRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1, Retryable: func(error) bool { return false }}
}

// Do runs fn under the policy. Non-retryable errors propagate on first
// occurrence; retryable errors are reattempted with increasing backoff until
// attempts are exhausted, then the last error propagates. The attempt count
// actually used is returned for accounting.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) (attempts int, err error) {
	max := p.MaxAttempts
	if max < 1 {
		max = 1
	}

	for attempt := 1; attempt <= max; attempt++ {
		attempts = attempt
		err = fn()
		if err == nil {
			return attempts, nil
		}
		if p.Retryable == nil || !p.Retryable(err) {
			return attempts, err
		}
		if attempt == max {
			break
		}

		delay := p.BaseDelay << (attempt - 1)
		select {
		case <-ctx.Done():
			return attempts, Classify(ctx.Err())
		case <-time.After(delay):
		}
	}
	return attempts, err
}

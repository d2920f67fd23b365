package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/priceiq/pkg/logging"
)

const (
	// DefaultMaxAttempts is the number of calls made before giving up.
	DefaultMaxAttempts = 5
	// DefaultBaseDelay is the wait after the first failure; it doubles after each one.
	DefaultBaseDelay = 2 * time.Second
)

var retryLog = logging.MustLogger("retry")

// RetryProvider wraps a Provider and retries failed calls with exponential
// backoff: base, 2*base, 4*base... between attempts. When every attempt fails
// it returns ErrNoResponse.
type RetryProvider struct {
	next        Provider
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// RetryOption configures a RetryProvider.
type RetryOption func(*RetryProvider)

// WithMaxAttempts sets the total number of calls.
func WithMaxAttempts(n int) RetryOption {
	return func(r *RetryProvider) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithBaseDelay sets the delay after the first failure.
func WithBaseDelay(d time.Duration) RetryOption {
	return func(r *RetryProvider) {
		r.baseDelay = d
	}
}

// WithSleep replaces the wait between attempts. Tests use it to record delays.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) RetryOption {
	return func(r *RetryProvider) {
		r.sleep = sleep
	}
}

// NewRetryProvider wraps next with the default policy (5 attempts, 2s base).
func NewRetryProvider(next Provider, opts ...RetryOption) *RetryProvider {
	r := &RetryProvider{
		next:        next,
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ Provider = (*RetryProvider)(nil)

// Respond calls the wrapped provider until it succeeds, the error is not
// retryable, the context ends, or the attempts are used up.
func (r *RetryProvider) Respond(ctx context.Context, req *Request) (*Response, error) {
	var lastErr error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := r.baseDelay << (attempt - 1)
			retryLog.Debugf("retrying model call (attempt %d) after %s", attempt+1, delay)
			if err := r.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		resp, err := r.next.Respond(ctx, req)
		if err == nil && resp != nil {
			return resp, nil
		}
		if err == nil {
			err = errors.New("empty response")
		}
		lastErr = err

		if errors.Is(err, ErrMissingCredential) || ctx.Err() != nil {
			return nil, err
		}
		retryLog.Warnf("model call attempt %d/%d failed: %v", attempt+1, r.maxAttempts, err)
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrNoResponse, r.maxAttempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

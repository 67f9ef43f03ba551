package httputil

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// MaxRetryDelay caps both the doubled backoff and a server's Retry-After hint.
const MaxRetryDelay = 30 * time.Second

// RetryableError marks a transient failure. After, when set, is the wait the
// server asked for and replaces the backoff delay for the next attempt.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err in a [RetryableError]. nil stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// RetryAfter is like [Retryable] but carries a server-requested delay.
func RetryAfter(err error, after time.Duration) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err, After: after}
}

// Retry calls fn up to attempts times. Only errors wrapping a
// [RetryableError] are retried; the delay doubles after each failure and
// never exceeds [MaxRetryDelay]. It returns the last error, or ctx.Err()
// when the context ends while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		var re *RetryableError
		if !errors.As(err, &re) {
			return err
		}
		if i == attempts-1 {
			break
		}

		wait := delay
		if re.After > 0 {
			wait = re.After
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(min(wait, MaxRetryDelay)):
		}
		delay = min(delay*2, MaxRetryDelay)
	}
	return lastErr
}

// RetryWithBackoff retries fn three times starting at one second. The cache
// backends use it to ride out a redis or mongo server that is still starting.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, time.Second, fn)
}

// IsRetryable reports whether err wraps a [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// retryAfterHeader reads a Retry-After value given in seconds. HTTP dates
// and malformed values yield 0.
func retryAfterHeader(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

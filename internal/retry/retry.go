// Package retry provides the bounded retry policy shared by every outbound
// call site (embedding provider, relevance judge). One policy object,
// constructed from config, is injected into all HTTP clients so rate-limit
// handling behaves identically everywhere.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy bounds retries with exponential backoff. Retryable decides whether
// a given error is worth another attempt; a nil Retryable retries every
// error.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the growing backoff delay.
	MaxDelay time.Duration

	// Multiplier grows the delay after each retry.
	Multiplier float64

	// Retryable reports whether err justifies another attempt.
	Retryable func(err error) bool
}

// DefaultPolicy returns the policy used when config does not override it.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  4,
		InitialDelay: 1 * time.Second,
		MaxDelay:     16 * time.Second,
		Multiplier:   2.0,
	}
}

// Do executes fn with bounded retries. On exhaustion the last error is
// returned wrapped. Context cancellation is honored before every attempt
// and during backoff sleeps.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	_, err := DoWithResult(ctx, p, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult is Do for functions returning a value.
func DoWithResult[T any](ctx context.Context, p Policy, fn func() (T, error)) (T, error) {
	var zero T
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := p.InitialDelay
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == attempts-1 {
			break
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return zero, err
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * p.Multiplier)
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}

	return zero, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

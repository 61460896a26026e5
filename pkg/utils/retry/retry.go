// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Func is the type of function to retry. Returning done=true stops the retry
// loop; a non-nil error combined with done=true aborts with that error, while
// done=false marks the error as retriable.
type Func func(ctx context.Context) (done bool, err error)

// Ok returns (true, nil), ending the retry loop successfully.
func Ok() (bool, error) {
	return true, nil
}

// MinorError marks the given error as retriable.
func MinorError(err error) (bool, error) {
	return false, err
}

// SevereError marks the given error as not retriable, aborting immediately.
func SevereError(err error) (bool, error) {
	return true, err
}

// Error is returned when the retry deadline elapsed. It carries the last
// error observed while retrying, if any.
type Error struct {
	ctxError error
	err      error
}

// Error implements error.
func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("retry failed with %v, last error: %v", e.ctxError, e.err)
	}
	return fmt.Sprintf("retry failed with %v", e.ctxError)
}

// Unwrap returns the last error observed while retrying.
func (e *Error) Unwrap() error {
	return e.err
}

// NewError creates a new retry Error from the context error and the last
// observed error.
func NewError(ctxError, err error) *Error {
	return &Error{ctxError: ctxError, err: err}
}

// Until retries f every interval until it signals done, the context is
// cancelled, or its deadline passes.
func Until(ctx context.Context, interval time.Duration, f Func) error {
	var lastErr error

	for {
		done, err := f(ctx)
		if err != nil {
			lastErr = err
		}
		if done {
			return err
		}

		select {
		case <-ctx.Done():
			return NewError(ctx.Err(), lastErr)
		case <-time.After(interval):
		}
	}
}

// UntilTimeout is Until bounded by the given timeout.
func UntilTimeout(ctx context.Context, interval, timeout time.Duration, f Func) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return Until(ctx, interval, f)
}

// DefaultDeadline bounds a backoff loop when the caller gives no deadline.
const DefaultDeadline = 120 * time.Second

// DefaultMaxBackoff caps the delay between two attempts of a backoff loop.
const DefaultMaxBackoff = 5 * time.Second

// UntilBackoff retries f with truncated exponential backoff,
// delay = min(2^n + rand(0,1), maxBackoff), until f signals done or the
// deadline elapses.
func UntilBackoff(ctx context.Context, maxBackoff, deadline time.Duration, f Func) error {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	var (
		lastErr error
		attempt int
	)

	for {
		done, err := f(ctx)
		if err != nil {
			lastErr = err
		}
		if done {
			return err
		}

		delay := time.Duration((math.Pow(2, float64(attempt)) + rand.Float64()) * float64(time.Second))
		if delay > maxBackoff {
			delay = maxBackoff
		}
		attempt++

		select {
		case <-ctx.Done():
			return NewError(ctx.Err(), lastErr)
		case <-time.After(delay):
		}
	}
}

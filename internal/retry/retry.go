// Package retry re-runs transient-failing units of work. A unit is one
// full protocol attempt (connect, handshake, operation); on a retryable
// failure the caller-supplied closure is invoked again from scratch, so
// every attempt gets a fresh channel and fresh state.
package retry

import (
	"context"

	"github.com/woozymasta/mcping/pkg/protocol"
)

// DefaultTries is the attempt bound used at every call site.
const DefaultTries = 3

// Do runs work up to tries times. Transport and protocol failures trigger
// another attempt; validation failures and unclassified errors propagate
// immediately. When every attempt fails, the last failure is returned
// unchanged.
func Do[T any](tries int, work func() (T, error)) (T, error) {
	var lastErr error
	for i := 0; i < tries; i++ {
		v, err := work()
		if err == nil {
			return v, nil
		}
		if !protocol.Retryable(err) {
			var zero T
			return zero, err
		}
		lastErr = err
	}

	var zero T
	return zero, lastErr
}

// DoContext behaves like Do but stops between attempts once ctx is done.
// The context is handed to each attempt so its I/O honors the deadline.
func DoContext[T any](ctx context.Context, tries int, work func(context.Context) (T, error)) (T, error) {
	var lastErr error
	for i := 0; i < tries; i++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			break
		}

		v, err := work(ctx)
		if err == nil {
			return v, nil
		}
		if !protocol.Retryable(err) {
			var zero T
			return zero, err
		}
		lastErr = err
	}

	var zero T
	return zero, lastErr
}

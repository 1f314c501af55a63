package retry

import (
	"context"
	"errors"
	"testing"

	"github.com/woozymasta/mcping/pkg/protocol"
)

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	v, err := Do(DefaultTries, func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", protocol.TransportError("read", protocol.ErrUnderflow)
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if v != "ok" || attempts != 3 {
		t.Errorf("v = %q after %d attempts, want ok after 3", v, attempts)
	}
}

func TestDoExhaustedReturnsLastError(t *testing.T) {
	attempts := 0
	last := protocol.ProtocolError("ping", "attempt %d", DefaultTries)
	_, err := Do(DefaultTries, func() (int, error) {
		attempts++
		if attempts == DefaultTries {
			return 0, last
		}
		return 0, protocol.TransportError("read", protocol.ErrUnderflow)
	})
	if attempts != DefaultTries {
		t.Errorf("attempts = %d, want %d", attempts, DefaultTries)
	}
	if !errors.Is(err, last) {
		t.Errorf("err = %v, want the last failure unchanged", err)
	}
}

func TestDoValidationFailureIsTerminal(t *testing.T) {
	attempts := 0
	wantErr := protocol.ValidationError("status", "no value")
	_, err := Do(DefaultTries, func() (int, error) {
		attempts++
		return 0, wantErr
	})
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v", err)
	}
}

func TestDoUnclassifiedFailureIsTerminal(t *testing.T) {
	attempts := 0
	_, err := Do(DefaultTries, func() (int, error) {
		attempts++
		return 0, errors.New("plain")
	})
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if err == nil || err.Error() != "plain" {
		t.Errorf("err = %v", err)
	}
}

func TestDoContextStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	_, err := DoContext(ctx, DefaultTries, func(context.Context) (int, error) {
		attempts++
		cancel()
		return 0, protocol.TransportError("read", protocol.ErrUnderflow)
	})
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if !errors.Is(err, protocol.ErrUnderflow) {
		t.Errorf("err = %v, want the attempt failure", err)
	}
}

func TestDoContextCancelledBeforeFirstAttempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := DoContext(ctx, DefaultTries, func(context.Context) (int, error) {
		t.Fatal("work should not run on a done context")
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

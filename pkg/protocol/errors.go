// Package protocol implements the buffered binary channels that the
// Minecraft status protocols are spoken over: an in-memory packet buffer
// with the shared read/write primitives, and TCP/UDP socket channels with
// per-call deadlines.
package protocol

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
)

// Kind classifies a protocol-layer failure. The retry layer inspects it to
// decide whether a fresh attempt makes sense.
type Kind int

const (
	// KindTransport covers socket-level failures: connect errors, timeouts,
	// resets and short reads (buffer underflow).
	KindTransport Kind = iota + 1

	// KindProtocol covers structurally broken responses: wrong packet id,
	// magic or token mismatch, undecodable varint, malformed delimiters.
	KindProtocol

	// KindValidation covers well-formed payloads with missing or mistyped
	// content. Retrying cannot fix these, they surface immediately.
	KindValidation
)

// String returns a short human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// ErrUnderflow is returned when a read primitive asks for more bytes than
// the buffer holds.
var ErrUnderflow = errors.New("buffer underflow")

// Error is a classified protocol failure. Op names the operation that
// failed ("handshake", "read status", ...).
type Error struct {
	Err  error
	Op   string
	Kind Kind
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// TransportError wraps err as a transport-kind failure.
func TransportError(op string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Err: err}
}

// ProtocolError creates a protocol-kind failure from a format string.
func ProtocolError(op, format string, args ...any) *Error {
	return &Error{Kind: KindProtocol, Op: op, Err: fmt.Errorf(format, args...)}
}

// ValidationError creates a validation-kind failure from a format string.
func ValidationError(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the failure kind from err, unwrapping as needed.
// Bare network errors that never went through this package (dial failures,
// deadline exceeded, resets) count as transport. Anything unclassified
// returns 0.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}

	var ne net.Error
	if errors.As(err, &ne) {
		return KindTransport
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, ErrUnderflow) {
		return KindTransport
	}

	return 0
}

// Retryable reports whether a fresh attempt may succeed after err.
// Transport and protocol failures are transient, validation failures and
// unclassified errors are terminal.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindTransport, KindProtocol:
		return true
	default:
		return false
	}
}

package persistence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorKind is a closed set of transport failure variants. Retryability is
// a property of the variant; callers never inspect error text.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindConnTerminated
	KindTimeout
	KindConnRefused
	KindAcquireTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindConnTerminated:
		return "connection_terminated"
	case KindTimeout:
		return "timeout"
	case KindConnRefused:
		return "connection_refused"
	case KindAcquireTimeout:
		return "acquire_timeout"
	default:
		return "other"
	}
}

// Retryable reports whether the variant is a transient connection failure.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindConnTerminated, KindTimeout, KindConnRefused, KindAcquireTimeout:
		return true
	default:
		return false
	}
}

// TransportError wraps a database or network failure with its classified kind.
type TransportError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the error is safe to retry.
func (e *TransportError) Retryable() bool {
	return e.Kind.Retryable()
}

// IsRetryable reports whether err is a retryable TransportError.
func IsRetryable(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Retryable()
}

// classify wraps a driver or network error into a TransportError. The
// classification happens here, at the transport layer, so the retry loop
// only ever looks at the variant.
func classify(op string, err error) *TransportError {
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}

	kind := KindOther
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.Is(err, syscall.ECONNREFUSED):
		kind = KindConnRefused
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE):
		kind = KindConnTerminated
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		kind = KindConnTerminated
	case pgconn.SafeToRetry(err):
		kind = KindConnTerminated
	default:
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			kind = KindTimeout
		}
	}

	return &TransportError{Kind: kind, Op: op, Err: err}
}

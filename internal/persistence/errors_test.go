package persistence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyVariants(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		kind      ErrorKind
		retryable bool
	}{
		{"deadline", context.DeadlineExceeded, KindTimeout, true},
		{"refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), KindConnRefused, true},
		{"reset", fmt.Errorf("read: %w", syscall.ECONNRESET), KindConnTerminated, true},
		{"broken pipe", fmt.Errorf("write: %w", syscall.EPIPE), KindConnTerminated, true},
		{"eof", io.EOF, KindConnTerminated, true},
		{"unexpected eof", io.ErrUnexpectedEOF, KindConnTerminated, true},
		{"unknown", errors.New("syntax error at or near"), KindOther, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			te := classify("exec", tc.err)
			assert.Equal(t, tc.kind, te.Kind)
			assert.Equal(t, tc.retryable, te.Retryable())
		})
	}
}

func TestClassifyPassesThroughTransportError(t *testing.T) {
	orig := &TransportError{Kind: KindAcquireTimeout, Op: "acquire", Err: errors.New("pool exhausted")}
	assert.Same(t, orig, classify("exec", orig))
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.False(t, IsRetryable(&TransportError{Kind: KindOther}))
	assert.True(t, IsRetryable(&TransportError{Kind: KindTimeout}))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", &TransportError{Kind: KindConnRefused})))
}

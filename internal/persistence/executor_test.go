package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/focusmate-ai/focus-service/internal/config"
)

// fakeTransport replays a scripted sequence of results.
type fakeTransport struct {
	name      string
	results   []fakeResult
	calls     int
	scripts   []string
	scriptErr error
}

type fakeResult struct {
	outcome *Outcome
	err     error
}

func (f *fakeTransport) Name() string { return f.name }

func (f *fakeTransport) Exec(ctx context.Context, sql string, args []any) (*Outcome, error) {
	idx := f.calls
	f.calls++
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	res := f.results[idx]
	return res.outcome, res.err
}

func (f *fakeTransport) Script(ctx context.Context, sql string) error {
	f.scripts = append(f.scripts, sql)
	return f.scriptErr
}

func (f *fakeTransport) Ping(ctx context.Context) error { return nil }
func (f *fakeTransport) Close()                         {}

func newTestExecutor(t *fakeTransport) *Executor {
	e := NewExecutor(config.PostgresConfig{
		QueryRetries:   2,
		QueryRetryWait: time.Millisecond,
	}, zap.NewNop())
	e.transport = t
	return e
}

func retryableErr() error {
	return &TransportError{Kind: KindConnTerminated, Op: "exec", Err: errors.New("connection terminated")}
}

func TestQueryRecoversFromTransientFailures(t *testing.T) {
	transport := &fakeTransport{name: "fake", results: []fakeResult{
		{err: retryableErr()},
		{err: retryableErr()},
		{outcome: &Outcome{Rows: []Row{{"n": int64(1)}}, RowCount: 1, Command: "SELECT"}},
	}}
	e := newTestExecutor(transport)

	outcome, err := e.Query(context.Background(), "SELECT 1", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, transport.calls)
	assert.Equal(t, int64(1), outcome.First().Int64("n"))
}

func TestQueryStopsOnPermanentFailure(t *testing.T) {
	transport := &fakeTransport{name: "fake", results: []fakeResult{
		{err: &TransportError{Kind: KindOther, Op: "exec", Err: errors.New("syntax error")}},
	}}
	e := newTestExecutor(transport)

	_, err := e.Query(context.Background(), "SELEC 1", nil)
	require.Error(t, err)
	assert.Equal(t, 1, transport.calls, "permanent failures must not be retried")
	assert.False(t, IsRetryable(err))
}

func TestQueryExhaustsRetryBudget(t *testing.T) {
	transport := &fakeTransport{name: "fake", results: []fakeResult{
		{err: retryableErr()},
	}}
	e := newTestExecutor(transport)

	_, err := e.Query(context.Background(), "SELECT 1", nil)
	require.Error(t, err)
	// first attempt plus two retries
	assert.Equal(t, 3, transport.calls)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, KindConnTerminated, te.Kind)
}

func TestQueryRetryOverride(t *testing.T) {
	transport := &fakeTransport{name: "fake", results: []fakeResult{
		{err: retryableErr()},
	}}
	e := newTestExecutor(transport)

	_, err := e.Query(context.Background(), "SELECT 1", nil, WithRetries(0))
	require.Error(t, err)
	assert.Equal(t, 1, transport.calls)
}

func TestQueryWithPoolReusesNonHTTPTransport(t *testing.T) {
	transport := &fakeTransport{name: "fake", results: []fakeResult{
		{outcome: &Outcome{Command: "SELECT"}},
	}}
	e := newTestExecutor(transport)

	// WithPool only bypasses a cached HTTP driver; anything already bound
	// to the database serves the call directly.
	_, err := e.Query(context.Background(), "SELECT 1", nil, WithPool())
	require.NoError(t, err)
	assert.Equal(t, 1, transport.calls)
}

func TestQueryHonorsContextDuringWait(t *testing.T) {
	transport := &fakeTransport{name: "fake", results: []fakeResult{
		{err: retryableErr()},
	}}
	e := NewExecutor(config.PostgresConfig{
		QueryRetries:   5,
		QueryRetryWait: time.Hour,
	}, zap.NewNop())
	e.transport = transport

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := e.Query(ctx, "SELECT 1", nil)
	require.Error(t, err)
	assert.Equal(t, 1, transport.calls)
}

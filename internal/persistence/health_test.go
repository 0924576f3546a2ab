package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/focusmate-ai/focus-service/internal/config"
)

// stallTransport simulates a hung connection that ignores cancellation.
type stallTransport struct{}

func (stallTransport) Name() string { return "stall" }

func (stallTransport) Exec(ctx context.Context, sql string, args []any) (*Outcome, error) {
	time.Sleep(2 * time.Second)
	return nil, classify("exec", context.DeadlineExceeded)
}

func (stallTransport) Script(ctx context.Context, sql string) error { return nil }
func (stallTransport) Ping(ctx context.Context) error               { return nil }
func (stallTransport) Close()                                       {}

func TestProbeReportsHealthy(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	transport := &fakeTransport{name: "postgres_pool", results: []fakeResult{
		{outcome: &Outcome{
			Rows: []Row{{
				"current_time": now,
				"pg_version":   "PostgreSQL 16.2",
			}},
			RowCount: 1,
			Command:  "SELECT",
		}},
	}}

	e := NewExecutor(config.PostgresConfig{}, zap.NewNop())
	e.transport = transport

	report := e.Probe(context.Background(), time.Second)
	assert.True(t, report.Success)
	assert.Equal(t, "postgres_pool", report.Transport)
	assert.Equal(t, now, report.Timestamp)
	assert.Equal(t, "PostgreSQL 16.2", report.PostgresVersion)
	assert.Empty(t, report.Error)
}

func TestProbeTimesOut(t *testing.T) {
	e := NewExecutor(config.PostgresConfig{}, zap.NewNop())
	e.transport = stallTransport{}

	start := time.Now()
	report := e.Probe(context.Background(), 50*time.Millisecond)
	assert.False(t, report.Success)
	assert.Contains(t, report.Error, "timed out")
	assert.Less(t, time.Since(start), time.Second, "probe must not hang")
}

func TestProbeReportsFailure(t *testing.T) {
	transport := &fakeTransport{name: "fake", results: []fakeResult{
		{err: retryableErr()},
	}}
	e := NewExecutor(config.PostgresConfig{}, zap.NewNop())
	e.transport = transport

	report := e.Probe(context.Background(), time.Second)
	assert.False(t, report.Success)
	assert.NotEmpty(t, report.Error)
}

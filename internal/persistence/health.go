package persistence

import (
	"context"
	"time"
)

// HealthReport summarizes a timed database round trip.
type HealthReport struct {
	Success         bool      `json:"success"`
	LatencyMS       int64     `json:"latency_ms"`
	Timestamp       time.Time `json:"timestamp,omitempty"`
	PostgresVersion string    `json:"postgres_version,omitempty"`
	Transport       string    `json:"transport"`
	Error           string    `json:"error,omitempty"`
}

// Probe races a trivial round-trip statement against a timer. When the
// timer fires first the outstanding query is abandoned; the transport's
// own timeout reaps it eventually.
func (e *Executor) Probe(ctx context.Context, timeout time.Duration) HealthReport {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	start := time.Now()
	report := HealthReport{Transport: e.Transport(ctx)}

	type probeResult struct {
		outcome *Outcome
		err     error
	}
	resultCh := make(chan probeResult, 1)

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	go func() {
		outcome, err := e.Query(probeCtx,
			"SELECT NOW() as current_time, version() as pg_version", nil,
			WithRetries(0))
		resultCh <- probeResult{outcome: outcome, err: err}
	}()

	select {
	case res := <-resultCh:
		report.LatencyMS = time.Since(start).Milliseconds()
		if res.err != nil {
			report.Error = res.err.Error()
			return report
		}
		row := res.outcome.First()
		report.Success = true
		report.Timestamp = row.Time("current_time")
		report.PostgresVersion = row.String("pg_version")
		return report
	case <-time.After(timeout):
		report.LatencyMS = time.Since(start).Milliseconds()
		report.Error = "health check timed out after " + timeout.String()
		return report
	}
}

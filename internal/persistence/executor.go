package persistence

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/focusmate-ai/focus-service/internal/config"
	"github.com/focusmate-ai/focus-service/pkg/util"
)

// Executor issues parameterized statements through one of two
// interchangeable transports with uniform retry and metrics logging.
//
// Transport selection is a process-wide decision made once and cached:
// the HTTP driver is preferred when configured and reachable, otherwise
// statements go through the connection pool. Transactions always use the
// pool, since they need a statement sequence bound to one connection.
type Executor struct {
	cfg    config.PostgresConfig
	logger *zap.Logger

	mu        sync.Mutex
	transport Transport
	pool      *pgxpool.Pool
}

// NewExecutor builds an executor; no connections are opened until first use.
func NewExecutor(cfg config.PostgresConfig, logger *zap.Logger) *Executor {
	return &Executor{cfg: cfg, logger: logger}
}

type queryOptions struct {
	retries   int
	retryWait time.Duration
	forcePool bool
}

// QueryOption overrides retry behavior per call site.
type QueryOption func(*queryOptions)

// WithRetries sets the number of extra attempts after the first.
func WithRetries(n int) QueryOption {
	return func(o *queryOptions) { o.retries = n }
}

// WithRetryWait sets the fixed delay between attempts.
func WithRetryWait(d time.Duration) QueryOption {
	return func(o *queryOptions) { o.retryWait = d }
}

// WithPool forces the pooled transport for this call.
func WithPool() QueryOption {
	return func(o *queryOptions) { o.forcePool = true }
}

// Query runs one statement with retry on transient transport failures.
// It returns the last TransportError once attempts are exhausted.
func (e *Executor) Query(ctx context.Context, sql string, args []any, opts ...QueryOption) (*Outcome, error) {
	options := queryOptions{retries: e.cfg.QueryRetries, retryWait: e.cfg.QueryRetryWait}
	for _, opt := range opts {
		opt(&options)
	}
	if options.retryWait <= 0 {
		options.retryWait = 200 * time.Millisecond
	}

	transport, err := e.transportFor(ctx, options.forcePool)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= options.retries; attempt++ {
		if attempt > 0 {
			e.logger.Info("retrying query",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", options.retries),
			)
			select {
			case <-time.After(options.retryWait):
			case <-ctx.Done():
				return nil, classify("wait", ctx.Err())
			}
		}

		start := time.Now()
		outcome, err := transport.Exec(ctx, sql, args)
		e.logMetrics(sql, time.Since(start), err)
		if err == nil {
			return outcome, nil
		}

		lastErr = err
		if !IsRetryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

// ExecScript runs a multi-statement SQL batch, bypassing the HTTP driver
// so the whole script executes over the simple query protocol. Used by
// the migration runner; no retry, a failed script needs operator eyes.
func (e *Executor) ExecScript(ctx context.Context, sql string) error {
	transport, err := e.transportFor(ctx, true)
	if err != nil {
		return err
	}

	start := time.Now()
	err = transport.Script(ctx, sql)
	e.logMetrics(sql, time.Since(start), err)
	return err
}

// Transport reports which transport statements currently run through,
// selecting one if none is cached yet.
func (e *Executor) Transport(ctx context.Context) string {
	transport, err := e.transportFor(ctx, false)
	if err != nil {
		return "unconfigured"
	}
	return transport.Name()
}

// Reset drops the cached transport so the next call re-evaluates the
// selection. Used by tests and by operators toggling the HTTP endpoint.
func (e *Executor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.transport != nil {
		e.transport.Close()
		e.transport = nil
	}
	if e.pool != nil {
		e.pool.Close()
		e.pool = nil
	}
}

// Close releases all transport resources.
func (e *Executor) Close() {
	e.Reset()
}

func (e *Executor) transportFor(ctx context.Context, forcePool bool) (Transport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.transport != nil {
		// A cached pool transport already satisfies forcePool; only the
		// HTTP driver has to be bypassed.
		if _, isHTTP := e.transport.(*httpTransport); !forcePool || !isHTTP {
			return e.transport, nil
		}
	}
	if forcePool {
		pool, err := e.poolLocked(ctx)
		if err != nil {
			return nil, err
		}
		return newPoolTransport(pool, e.cfg.AcquireTimeout), nil
	}

	if e.cfg.HTTPEndpoint != "" {
		candidate := newHTTPTransport(e.cfg.HTTPEndpoint, e.cfg.HTTPToken, e.cfg.AcquireTimeout)
		if err := candidate.Ping(ctx); err == nil {
			e.logger.Info("using http sql transport")
			e.transport = candidate
			return e.transport, nil
		} else {
			e.logger.Warn("http sql transport unreachable; falling back to pool", zap.Error(err))
		}
	}

	pool, err := e.poolLocked(ctx)
	if err != nil {
		return nil, err
	}
	e.transport = newPoolTransport(pool, e.cfg.AcquireTimeout)
	e.logger.Info("using pooled sql transport")
	return e.transport, nil
}

func (e *Executor) poolLocked(ctx context.Context) (*pgxpool.Pool, error) {
	if e.pool != nil {
		return e.pool, nil
	}
	if e.cfg.DSN == "" {
		return nil, util.NewConfigurationError("DATABASE_URL is not set", nil)
	}
	pool, err := NewPool(ctx, e.cfg, e.logger)
	if err != nil {
		return nil, classify("connect", err)
	}
	e.pool = pool
	return e.pool, nil
}

// logMetrics emits one db_metrics record per attempt. It must never
// affect control flow.
func (e *Executor) logMetrics(sql string, duration time.Duration, err error) {
	fields := []zap.Field{
		zap.String("query_type", commandVerb(sql)),
		zap.Int64("duration_ms", duration.Milliseconds()),
		zap.Bool("success", err == nil),
	}
	if err != nil {
		fields = append(fields, zap.String("error", err.Error()))
		var te *TransportError
		if errors.As(err, &te) {
			fields = append(fields, zap.String("error_kind", te.Kind.String()))
		}
	}
	e.logger.Info("db_metrics", fields...)
}

package persistence

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

var errTransactionTransport = errors.New("transactions require the pooled transport")

// Tx is a transaction handle bound to a single pooled connection. All
// statements inside the transaction body run against that connection,
// never through the executor's transport-selection path.
type Tx struct {
	conn     statementRunner
	executor *Executor
}

type statementRunner interface {
	Exec(ctx context.Context, sql string, args []any) (*Outcome, error)
}

// Query runs one statement on the transaction's connection.
func (tx *Tx) Query(ctx context.Context, sql string, args []any) (*Outcome, error) {
	start := time.Now()
	outcome, err := tx.conn.Exec(ctx, sql, args)
	tx.executor.logMetrics(sql, time.Since(start), err)
	return outcome, err
}

// Transaction wraps fn in BEGIN/COMMIT on one pooled connection. On any
// failure the transaction is rolled back best-effort; a rollback failure
// is logged but never masks the original error. Retryable transport
// failures rerun the whole body on a fresh connection after a fixed
// delay. The connection is released at the end of every attempt.
func (e *Executor) Transaction(ctx context.Context, fn func(*Tx) error, opts ...QueryOption) error {
	options := queryOptions{retries: e.cfg.TxnRetries, retryWait: e.cfg.TxnRetryWait}
	for _, opt := range opts {
		opt(&options)
	}
	if options.retryWait <= 0 {
		options.retryWait = 300 * time.Millisecond
	}

	var lastErr error
	for attempt := 0; attempt <= options.retries; attempt++ {
		if attempt > 0 {
			e.logger.Info("retrying transaction",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", options.retries),
			)
			select {
			case <-time.After(options.retryWait):
			case <-ctx.Done():
				return classify("wait", ctx.Err())
			}
		}

		err := e.runTransaction(ctx, fn)
		if err == nil {
			return nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return err
		}
	}
	return lastErr
}

func (e *Executor) runTransaction(ctx context.Context, fn func(*Tx) error) error {
	transport, err := e.transportFor(ctx, true)
	if err != nil {
		return err
	}
	pool, ok := transport.(*poolTransport)
	if !ok {
		return &TransportError{Kind: KindOther, Op: "begin", Err: errTransactionTransport}
	}

	acquireCtx, cancel := context.WithTimeout(ctx, pool.acquireTimeout)
	defer cancel()

	conn, err := pool.pool.Acquire(acquireCtx)
	if err != nil {
		te := classify("acquire", err)
		if te.Kind == KindTimeout {
			te.Kind = KindAcquireTimeout
		}
		return te
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "BEGIN"); err != nil {
		return classify("begin", err)
	}

	tx := &Tx{executor: e, conn: &boundConn{conn: conn}}
	if err := fn(tx); err != nil {
		if _, rbErr := conn.Exec(ctx, "ROLLBACK"); rbErr != nil {
			e.logger.Error("rollback failed", zap.Error(rbErr))
		}
		return err
	}

	if _, err := conn.Exec(ctx, "COMMIT"); err != nil {
		return classify("commit", err)
	}
	return nil
}

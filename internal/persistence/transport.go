package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Transport runs one parameterized statement and returns a normalized
// Outcome. Both implementations classify their failures into
// TransportError variants before returning.
type Transport interface {
	Name() string
	Exec(ctx context.Context, sql string, args []any) (*Outcome, error)
	// Script runs a multi-statement SQL batch. Exec cannot serve this:
	// parameterized statements go through the extended protocol, which
	// rejects more than one command per parse.
	Script(ctx context.Context, sql string) error
	Ping(ctx context.Context) error
	Close()
}

// poolTransport runs statements through a bounded pgx pool. Connections
// are always released back to the pool regardless of outcome.
type poolTransport struct {
	pool           *pgxpool.Pool
	acquireTimeout time.Duration
}

func newPoolTransport(pool *pgxpool.Pool, acquireTimeout time.Duration) *poolTransport {
	if acquireTimeout <= 0 {
		acquireTimeout = 5 * time.Second
	}
	return &poolTransport{pool: pool, acquireTimeout: acquireTimeout}
}

func (t *poolTransport) Name() string { return "pg_pool" }

func (t *poolTransport) Exec(ctx context.Context, sql string, args []any) (*Outcome, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, t.acquireTimeout)
	defer cancel()

	conn, err := t.pool.Acquire(acquireCtx)
	if err != nil {
		te := classify("acquire", err)
		if te.Kind == KindTimeout {
			te.Kind = KindAcquireTimeout
		}
		return nil, te
	}
	defer conn.Release()

	return runStatement(ctx, conn, sql, args)
}

// Script executes the batch on one connection with no bound arguments,
// which keeps pgx on the simple query protocol and lets Postgres accept
// several commands in a single string.
func (t *poolTransport) Script(ctx context.Context, sql string) error {
	acquireCtx, cancel := context.WithTimeout(ctx, t.acquireTimeout)
	defer cancel()

	conn, err := t.pool.Acquire(acquireCtx)
	if err != nil {
		te := classify("acquire", err)
		if te.Kind == KindTimeout {
			te.Kind = KindAcquireTimeout
		}
		return te
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, sql); err != nil {
		return classify("script", err)
	}
	return nil
}

// pgxQuerier is satisfied by both pooled handles and single connections.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func runStatement(ctx context.Context, q pgxQuerier, sql string, args []any) (*Outcome, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, classify("query", err)
	}

	fields := rows.FieldDescriptions()
	out := &Outcome{Command: commandVerb(sql)}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			rows.Close()
			return nil, classify("scan", err)
		}
		row := make(Row, len(fields))
		for i, field := range fields {
			row[field.Name] = values[i]
		}
		out.Rows = append(out.Rows, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, classify("query", err)
	}

	out.RowCount = len(out.Rows)
	if out.RowCount == 0 {
		out.RowCount = int(rows.CommandTag().RowsAffected())
	}
	return out, nil
}

// boundConn pins statements to one acquired connection for transactions.
type boundConn struct {
	conn *pgxpool.Conn
}

func (b *boundConn) Exec(ctx context.Context, sql string, args []any) (*Outcome, error) {
	return runStatement(ctx, b.conn, sql, args)
}

func (t *poolTransport) Ping(ctx context.Context) error {
	if err := t.pool.Ping(ctx); err != nil {
		return classify("ping", err)
	}
	return nil
}

func (t *poolTransport) Close() {
	t.pool.Close()
}

// httpTransport speaks a lightweight sql-over-http protocol: one POST per
// statement, JSON in and out, no connection state to manage.
type httpTransport struct {
	endpoint string
	token    string
	client   *http.Client
}

func newHTTPTransport(endpoint, token string, timeout time.Duration) *httpTransport {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &httpTransport{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: timeout},
	}
}

func (t *httpTransport) Name() string { return "http_driver" }

type httpStatement struct {
	Query  string `json:"query"`
	Params []any  `json:"params"`
}

type httpResult struct {
	Rows     []Row  `json:"rows"`
	RowCount int    `json:"rowCount"`
	Command  string `json:"command"`
	Message  string `json:"message"`
}

func (t *httpTransport) Exec(ctx context.Context, sql string, args []any) (*Outcome, error) {
	if args == nil {
		args = []any{}
	}
	payload, err := json.Marshal(httpStatement{Query: sql, Params: args})
	if err != nil {
		return nil, classify("encode", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, classify("request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, classify("post", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, classify("read", err)
	}

	var result httpResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, classify("decode", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("http driver status %d: %s", resp.StatusCode, result.Message)
		if resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusBadGateway {
			return nil, &TransportError{Kind: KindConnTerminated, Op: "post", Err: err}
		}
		return nil, &TransportError{Kind: KindOther, Op: "post", Err: err}
	}

	out := &Outcome{Rows: result.Rows, RowCount: result.RowCount, Command: result.Command}
	if out.Command == "" {
		out.Command = commandVerb(sql)
	}
	if out.RowCount == 0 {
		out.RowCount = len(out.Rows)
	}
	return out, nil
}

func (t *httpTransport) Script(ctx context.Context, sql string) error {
	_, err := t.Exec(ctx, sql, nil)
	return err
}

func (t *httpTransport) Ping(ctx context.Context) error {
	_, err := t.Exec(ctx, "SELECT 1", nil)
	return err
}

func (t *httpTransport) Close() {
	t.client.CloseIdleConnections()
}

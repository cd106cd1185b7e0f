package db

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avibot-labs/pgdata/pkg/pgdata"
)

// fakeRows serves a fixed result set.
type fakeRows struct {
	fields    []pgconn.FieldDescription
	values    [][]any
	valuesErr error
	iterErr   error
	idx       int
	closed    bool
}

func newFakeRows(columns []string, values [][]any) *fakeRows {
	fields := make([]pgconn.FieldDescription, len(columns))
	for i, c := range columns {
		fields[i] = pgconn.FieldDescription{Name: c}
	}
	return &fakeRows{fields: fields, values: values, idx: -1}
}

func (r *fakeRows) Next() bool {
	if r.idx+1 >= len(r.values) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	if r.valuesErr != nil {
		return nil, r.valuesErr
	}
	return r.values[r.idx], nil
}

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return r.fields }
func (r *fakeRows) Err() error                                   { return r.iterErr }
func (r *fakeRows) Close()                                       { r.closed = true }

// fakeTx records commit/rollback calls and delegates Query.
type fakeTx struct {
	queryFn    func(ctx context.Context, sql string, args ...any) (pgdata.Rows, error)
	commitErr  error
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgdata.Rows, error) {
	if t.queryFn != nil {
		return t.queryFn(ctx, sql, args...)
	}
	return newFakeRows(nil, nil), nil
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return t.commitErr
}

func (t *fakeTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

// fakeConn is a scriptable PooledConn. The notification loop runs on its own
// goroutine, so all mutable state is mutex guarded.
type fakeConn struct {
	mu       sync.Mutex
	execLog  []string
	execErr  error
	queryFn  func(ctx context.Context, sql string, args ...any) (pgdata.Rows, error)
	beginFn  func(ctx context.Context) (pgdata.Tx, error)
	notifyCh chan *pgconn.Notification
	releases int
}

func (c *fakeConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.execLog = append(c.execLog, sql)
	return pgconn.CommandTag{}, c.execErr
}

func (c *fakeConn) Query(ctx context.Context, sql string, args ...any) (pgdata.Rows, error) {
	c.mu.Lock()
	queryFn := c.queryFn
	c.mu.Unlock()
	if queryFn != nil {
		return queryFn(ctx, sql, args...)
	}
	return newFakeRows(nil, nil), nil
}

func (c *fakeConn) Begin(ctx context.Context) (pgdata.Tx, error) {
	c.mu.Lock()
	beginFn := c.beginFn
	c.mu.Unlock()
	if beginFn != nil {
		return beginFn(ctx)
	}
	return &fakeTx{}, nil
}

func (c *fakeConn) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	c.mu.Lock()
	ch := c.notifyCh
	c.mu.Unlock()

	if ch != nil {
		select {
		case n := <-ch:
			return n, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	<-ctx.Done()
	return nil, ctx.Err()
}

func (c *fakeConn) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releases++
}

func (c *fakeConn) statements() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.execLog))
	copy(out, c.execLog)
	return out
}

func (c *fakeConn) released() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.releases
}

// fakePool hands out a single shared fakeConn for every Acquire.
type fakePool struct {
	mu         sync.Mutex
	conn       *fakeConn
	acquireErr error
	acquires   int
	closed     bool
}

func newFakePool() *fakePool {
	return &fakePool{conn: &fakeConn{}}
}

func (p *fakePool) Acquire(context.Context) (pgdata.PooledConn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.acquires++
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	return p.conn, nil
}

func (p *fakePool) Ping(context.Context) error { return nil }

func (p *fakePool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func (p *fakePool) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// testConfig returns a minimal valid configuration.
func testConfig() *pgdata.ConnectionConfig {
	return &pgdata.ConnectionConfig{Password: "secret"}
}

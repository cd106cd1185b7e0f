package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avibot-labs/pgdata/pkg/pgdata"
)

// poolAdapter adapts *pgxpool.Pool to the pgdata.DBPool interface. This keeps
// pgx-specific types out of the Manager and Executor logic so tests can
// substitute fake pools.
//
// Thread-Safety: safe for concurrent use (pgxpool.Pool is thread-safe).
type poolAdapter struct {
	pool *pgxpool.Pool
}

func newPoolAdapter(pool *pgxpool.Pool) pgdata.DBPool {
	return &poolAdapter{pool: pool}
}

func (p *poolAdapter) Acquire(ctx context.Context) (pgdata.PooledConn, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &pooledConnAdapter{conn: conn}, nil
}

func (p *poolAdapter) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *poolAdapter) Close() {
	p.pool.Close()
}

// pooledConnAdapter adapts *pgxpool.Conn to pgdata.PooledConn.
type pooledConnAdapter struct {
	conn *pgxpool.Conn
}

func (p *pooledConnAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return p.conn.Exec(ctx, sql, args...)
}

func (p *pooledConnAdapter) Query(ctx context.Context, sql string, args ...any) (pgdata.Rows, error) {
	rows, err := p.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (p *pooledConnAdapter) Begin(ctx context.Context) (pgdata.Tx, error) {
	tx, err := p.conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &txAdapter{tx: tx}, nil
}

func (p *pooledConnAdapter) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	return p.conn.Conn().WaitForNotification(ctx)
}

func (p *pooledConnAdapter) Release() {
	p.conn.Release()
}

// txAdapter adapts pgx.Tx to pgdata.Tx.
type txAdapter struct {
	tx pgx.Tx
}

func (t *txAdapter) Query(ctx context.Context, sql string, args ...any) (pgdata.Rows, error) {
	rows, err := t.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (t *txAdapter) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *txAdapter) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// Compile-time interface checks.
var (
	_ pgdata.DBPool     = (*poolAdapter)(nil)
	_ pgdata.PooledConn = (*pooledConnAdapter)(nil)
	_ pgdata.Tx         = (*txAdapter)(nil)
)

package pgdata

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
)

// Row is a single result record keyed by column name, in result order as
// produced by the executor.
type Row map[string]any

// DBPool abstracts the connection pool operations needed by the manager and
// the executor. The pgx-backed implementation lives in internal/db; tests
// substitute fakes to simulate transport failures.
//
// Thread-Safety: implementations must be safe for concurrent use.
type DBPool interface {
	// Acquire checks a connection out of the pool. The caller must call
	// Release on the returned connection, including on error and
	// cancellation paths.
	Acquire(ctx context.Context) (PooledConn, error)

	// Ping verifies the pool can reach the server.
	Ping(ctx context.Context) error

	// Close closes the pool, waiting for checked-out connections to be
	// released.
	Close()
}

// PooledConn is a single connection checked out of a DBPool.
type PooledConn interface {
	// Exec executes a statement without returning rows.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	// Query executes a statement and returns its result rows. The statement
	// is prepared (and cached) by the driver before execution.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)

	// Begin starts an explicit transaction on this connection.
	Begin(ctx context.Context) (Tx, error)

	// WaitForNotification blocks until an asynchronous notification arrives
	// on this connection or the context is cancelled. Only meaningful on a
	// connection that has issued LISTEN.
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)

	// Release returns the connection to the pool. After Release the
	// connection must not be used.
	Release()
}

// Tx is an explicit transaction running on a single pooled connection.
type Tx interface {
	// Query executes a statement inside the transaction.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)

	// Commit commits the transaction.
	Commit(ctx context.Context) error

	// Rollback aborts the transaction. Safe to call after Commit; the
	// executor defers it unconditionally.
	Rollback(ctx context.Context) error
}

// Rows is a cursor over a statement's result set.
type Rows interface {
	// Next advances to the next row, returning false when no rows remain.
	Next() bool

	// Values returns the decoded values of the current row.
	Values() ([]any, error)

	// FieldDescriptions describes the result columns.
	FieldDescriptions() []pgconn.FieldDescription

	// Err returns any error encountered during iteration. Must be checked
	// after Next returns false.
	Err() error

	// Close releases resources held by the cursor. Idempotent.
	Close()
}

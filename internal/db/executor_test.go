package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avibot-labs/pgdata/internal/retry"
	"github.com/avibot-labs/pgdata/pkg/pgdata"
)

// fastRetry keeps test retries in the microsecond range.
func fastRetry(maxAttempts int) ExecutorOption {
	return WithRetryPolicy(retry.NewExponentialBackoff(maxAttempts,
		retry.WithInitialDelay(time.Millisecond),
		retry.WithJitter(0),
	))
}

func startedExecutor(t *testing.T, seq *poolSequence, opts ...ExecutorOption) (*Executor, *Manager) {
	t.Helper()
	m := newTestManager(t, seq)
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(func() { m.Close() })
	return NewExecutor(m, opts...), m
}

func TestExecutor_QueryReturnsOrderedRows(t *testing.T) {
	pool := newFakePool()
	pool.conn.queryFn = func(context.Context, string, ...any) (pgdata.Rows, error) {
		return newFakeRows([]string{"id", "name"}, [][]any{
			{int64(1), "alpha"},
			{int64(2), "beta"},
		}), nil
	}
	e, _ := startedExecutor(t, &poolSequence{pools: []*fakePool{pool}})

	rows, err := e.Query(context.Background(), "SELECT id, name FROM things")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, pgdata.Row{"id": int64(1), "name": "alpha"}, rows[0])
	assert.Equal(t, pgdata.Row{"id": int64(2), "name": "beta"}, rows[1])
}

func TestExecutor_QueryEmptyResult(t *testing.T) {
	e, _ := startedExecutor(t, &poolSequence{pools: []*fakePool{newFakePool()}})

	rows, err := e.Query(context.Background(), "SELECT 1 WHERE false")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestExecutor_TransportBreakRecreatesPoolAndRetries(t *testing.T) {
	dead := newFakePool()
	dead.conn.queryFn = func(context.Context, string, ...any) (pgdata.Rows, error) {
		return nil, errors.New("conn closed")
	}
	healthy := newFakePool()
	healthy.conn.queryFn = func(context.Context, string, ...any) (pgdata.Rows, error) {
		return newFakeRows([]string{"n"}, [][]any{{int64(42)}}), nil
	}
	seq := &poolSequence{pools: []*fakePool{dead, healthy}}
	e, _ := startedExecutor(t, seq, fastRetry(3))

	rows, err := e.Query(context.Background(), "SELECT n FROM counters")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(42), rows[0]["n"])

	// One recreation: the initial open plus exactly one replacement.
	assert.Equal(t, 2, seq.opens)
	assert.Eventually(t, dead.isClosed, time.Second, 10*time.Millisecond)
}

func TestExecutor_TransportBreakExhaustsAttempts(t *testing.T) {
	pool := newFakePool()
	pool.conn.queryFn = func(context.Context, string, ...any) (pgdata.Rows, error) {
		return nil, errors.New("conn closed")
	}
	seq := &poolSequence{pools: []*fakePool{pool}}
	e, _ := startedExecutor(t, seq, fastRetry(2))

	_, err := e.Query(context.Background(), "SELECT 1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pgdata.ErrConnection), "expected ErrConnection, got: %v", err)

	// Bounded: the initial open plus one recreation per retry, then stop.
	assert.Equal(t, 3, seq.opens)
}

func TestExecutor_StatementErrorIsNotRetried(t *testing.T) {
	pool := newFakePool()
	pool.conn.queryFn = func(context.Context, string, ...any) (pgdata.Rows, error) {
		return nil, &pgconn.PgError{Code: "42601", Message: "syntax error"}
	}
	seq := &poolSequence{pools: []*fakePool{pool}}
	e, _ := startedExecutor(t, seq, fastRetry(3))

	_, err := e.Query(context.Background(), "SELEC 1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pgdata.ErrQuery), "expected ErrQuery, got: %v", err)
	assert.False(t, errors.Is(err, pgdata.ErrConnection))

	assert.Equal(t, 1, seq.opens)
}

func TestExecutor_MalformedRowWrapsResponseError(t *testing.T) {
	pool := newFakePool()
	pool.conn.queryFn = func(context.Context, string, ...any) (pgdata.Rows, error) {
		rows := newFakeRows([]string{"id"}, [][]any{{int64(1)}})
		rows.valuesErr = errors.New("cannot decode value")
		return rows, nil
	}
	e, _ := startedExecutor(t, &poolSequence{pools: []*fakePool{pool}})

	_, err := e.Query(context.Background(), "SELECT id FROM things")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pgdata.ErrResponse), "expected ErrResponse, got: %v", err)
}

func TestExecutor_CancellationPassesThrough(t *testing.T) {
	pool := newFakePool()
	pool.conn.queryFn = func(ctx context.Context, _ string, _ ...any) (pgdata.Rows, error) {
		return nil, ctx.Err()
	}
	e, _ := startedExecutor(t, &poolSequence{pools: []*fakePool{pool}}, fastRetry(3))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Query(ctx, "SELECT 1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, pgdata.ErrQuery))
}

func TestExecutor_CallTimeoutBoundsTheCall(t *testing.T) {
	pool := newFakePool()
	pool.conn.queryFn = func(ctx context.Context, _ string, _ ...any) (pgdata.Rows, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	e, _ := startedExecutor(t, &poolSequence{pools: []*fakePool{pool}},
		WithCallTimeout(20*time.Millisecond))

	_, err := e.Query(context.Background(), "SELECT pg_sleep(60)")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestExecutor_ReleasesConnectionOnEveryPath(t *testing.T) {
	pool := newFakePool()
	pool.conn.queryFn = func(context.Context, string, ...any) (pgdata.Rows, error) {
		return nil, &pgconn.PgError{Code: "42601"}
	}
	e, _ := startedExecutor(t, &poolSequence{pools: []*fakePool{pool}})

	before := pool.conn.released()
	_, err := e.Query(context.Background(), "SELEC 1")
	require.Error(t, err)
	assert.Equal(t, before+1, pool.conn.released())
}

func TestExecutor_TransactionCommitsOnSuccess(t *testing.T) {
	tx := &fakeTx{
		queryFn: func(context.Context, string, ...any) (pgdata.Rows, error) {
			return newFakeRows([]string{"id"}, [][]any{{int64(7)}}), nil
		},
	}
	pool := newFakePool()
	pool.conn.beginFn = func(context.Context) (pgdata.Tx, error) { return tx, nil }
	e, _ := startedExecutor(t, &poolSequence{pools: []*fakePool{pool}})

	rows, err := e.Transaction(context.Background(), "INSERT INTO things DEFAULT VALUES RETURNING id")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(7), rows[0]["id"])
	assert.True(t, tx.committed)
}

func TestExecutor_TransactionRollsBackOnQueryError(t *testing.T) {
	tx := &fakeTx{
		queryFn: func(context.Context, string, ...any) (pgdata.Rows, error) {
			return nil, &pgconn.PgError{Code: "23505", Message: "duplicate key"}
		},
	}
	pool := newFakePool()
	pool.conn.beginFn = func(context.Context) (pgdata.Tx, error) { return tx, nil }
	e, _ := startedExecutor(t, &poolSequence{pools: []*fakePool{pool}})

	_, err := e.Transaction(context.Background(), "INSERT INTO things (id) VALUES (1)")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pgdata.ErrQuery))
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestExecutor_TransactionBeginFailureIsRetriedOnTransport(t *testing.T) {
	dead := newFakePool()
	dead.conn.beginFn = func(context.Context) (pgdata.Tx, error) {
		return nil, errors.New("server closed the connection unexpectedly")
	}
	healthy := newFakePool()
	seq := &poolSequence{pools: []*fakePool{dead, healthy}}
	e, _ := startedExecutor(t, seq, fastRetry(3))

	_, err := e.Transaction(context.Background(), "SELECT 1")
	require.NoError(t, err)
	assert.Equal(t, 2, seq.opens)
}

func TestExecutor_QueryAgainstNeverStartedManager(t *testing.T) {
	seq := &poolSequence{pools: []*fakePool{newFakePool()}}
	m := newTestManager(t, seq)
	e := NewExecutor(m, fastRetry(1))

	_, err := e.Query(context.Background(), "SELECT 1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pgdata.ErrConnection))
}

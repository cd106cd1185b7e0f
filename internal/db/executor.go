package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avibot-labs/pgdata/internal/retry"
	"github.com/avibot-labs/pgdata/pkg/pgdata"
)

// Executor runs parameterized statements against the manager's pool. Each
// call checks out its own connection for the duration of the call and
// releases it on completion, error, or cancellation.
//
// When the transport breaks mid-call the executor logs the failure, has the
// manager recreate the pool, and retries with backoff up to the strategy's
// attempt cap, after which a terminal pgdata.ErrConnection is returned. The
// statement is never retried for non-transport failures.
type Executor struct {
	mgr         *Manager
	logger      pgdata.Logger
	classifier  pgdata.ErrorClassifier
	retrier     *retry.Executor
	callTimeout time.Duration
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRetryPolicy overrides the backoff strategy governing transport-failure
// retries.
func WithRetryPolicy(strategy pgdata.BackoffStrategy) ExecutorOption {
	return func(e *Executor) {
		e.retrier = retry.NewExecutor(e.classifier, strategy)
	}
}

// WithFailureClassifier overrides how transport failures are recognized.
func WithFailureClassifier(classifier pgdata.ErrorClassifier) ExecutorOption {
	return func(e *Executor) {
		e.classifier = classifier
		e.retrier = retry.NewExecutor(classifier, retry.NewExponentialBackoff(pgdata.DefaultRetryMaxAttempts))
	}
}

// WithQueryLogger sets the logger used for retry diagnostics.
func WithQueryLogger(logger pgdata.Logger) ExecutorOption {
	return func(e *Executor) { e.logger = logger }
}

// WithCallTimeout bounds each Query/Transaction call, covering all retry
// attempts. Zero disables the bound; timeouts are otherwise the caller's
// responsibility via ctx.
func WithCallTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.callTimeout = d }
}

// NewExecutor creates an Executor over the manager's pool with the default
// transport classifier and bounded exponential backoff.
func NewExecutor(mgr *Manager, opts ...ExecutorOption) *Executor {
	classifier := retry.NewTransportClassifier()
	e := &Executor{
		mgr:        mgr,
		logger:     mgr.logger,
		classifier: classifier,
		retrier:    retry.NewExecutor(classifier, retry.NewExponentialBackoff(pgdata.DefaultRetryMaxAttempts)),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Query executes a parameterized statement and returns all result rows in
// order.
func (e *Executor) Query(ctx context.Context, sql string, args ...any) ([]pgdata.Row, error) {
	ctx, cancel := e.callContext(ctx)
	defer cancel()

	var rows []pgdata.Row
	err := e.execute(ctx, func(ctx context.Context) error {
		var opErr error
		rows, opErr = e.queryOnce(ctx, sql, args...)
		return opErr
	})
	if err != nil {
		return nil, e.classifyError(err)
	}
	return rows, nil
}

// Transaction executes a parameterized statement inside an explicit
// transaction, streaming result rows through the transaction's cursor into
// an ordered slice before committing.
func (e *Executor) Transaction(ctx context.Context, sql string, args ...any) ([]pgdata.Row, error) {
	ctx, cancel := e.callContext(ctx)
	defer cancel()

	var rows []pgdata.Row
	err := e.execute(ctx, func(ctx context.Context) error {
		var opErr error
		rows, opErr = e.transactionOnce(ctx, sql, args...)
		return opErr
	})
	if err != nil {
		return nil, e.classifyError(err)
	}
	return rows, nil
}

func (e *Executor) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.callTimeout > 0 {
		return context.WithTimeout(ctx, e.callTimeout)
	}
	return ctx, func() {}
}

// execute runs op under the retry policy, recreating the pool before each
// retry attempt.
func (e *Executor) execute(ctx context.Context, op func(ctx context.Context) error) error {
	onRetry := func(attempt int, err error, delay time.Duration) {
		e.logger.Error("interface failure: %v; re-creating pool (attempt %d, retrying in %s)", err, attempt+1, delay)
		if recreateErr := e.mgr.Recreate(ctx); recreateErr != nil {
			e.logger.Error("pool recreation failed: %v", recreateErr)
		}
	}
	return e.retrier.WithOnRetry(onRetry).Execute(ctx, op)
}

func (e *Executor) queryOnce(ctx context.Context, sql string, args ...any) ([]pgdata.Row, error) {
	conn, err := e.mgr.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	return collectRows(rows)
}

func (e *Executor) transactionOnce(ctx context.Context, sql string, args ...any) ([]pgdata.Row, error) {
	conn, err := e.mgr.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	// No-op after a successful commit.
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	collected, err := collectRows(rows)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return collected, nil
}

// collectRows drains a cursor into ordered column-name keyed records.
func collectRows(rows pgdata.Rows) ([]pgdata.Row, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()

	var out []pgdata.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", pgdata.ErrResponse, err)
		}
		if len(values) != len(fields) {
			return nil, fmt.Errorf("%w: got %d values for %d columns", pgdata.ErrResponse, len(values), len(fields))
		}

		row := make(pgdata.Row, len(fields))
		for i, fd := range fields {
			row[fd.Name] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// classifyError maps a terminal failure onto the library's error taxonomy:
// cancellation and already-classified errors pass through, exhausted
// transport failures become ErrConnection, and everything else is a
// statement failure.
func (e *Executor) classifyError(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, pgdata.ErrConnection), errors.Is(err, pgdata.ErrResponse):
		return err
	case e.classifier.IsTransient(err):
		return fmt.Errorf("%w: retries exhausted: %w", pgdata.ErrConnection, err)
	default:
		return fmt.Errorf("%w: %w", pgdata.ErrQuery, err)
	}
}

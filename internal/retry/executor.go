package retry

import (
	"context"
	"time"

	"github.com/avibot-labs/pgdata/pkg/pgdata"
)

// Executor runs an operation with classifier-gated, backoff-delayed retries.
//
// Thread safety: Execute is safe for concurrent use. WithOnRetry returns a
// new instance so callers can attach per-call callbacks without shared state.
type Executor struct {
	classifier pgdata.ErrorClassifier
	strategy   pgdata.BackoffStrategy
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor creates a retry executor. Panics if classifier or strategy is
// nil; both are wiring, not runtime input.
func NewExecutor(classifier pgdata.ErrorClassifier, strategy pgdata.BackoffStrategy) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{
		classifier: classifier,
		strategy:   strategy,
	}
}

// WithOnRetry returns a copy of the executor that invokes callback before
// each retry attempt. The receiver is not modified.
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// Execute runs operation, retrying transient failures until the strategy's
// attempt cap is reached. It returns nil on success, the fatal error
// unchanged when the classifier rejects it, the context error on
// cancellation, and the last transient error once attempts are exhausted.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	lastErr := operation(ctx)
	if lastErr == nil {
		return nil
	}

	if !e.classifier.IsTransient(lastErr) {
		return lastErr
	}

	maxAttempts := e.strategy.MaxAttempts()
	for attempt := 0; maxAttempts < 0 || attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		delay := e.strategy.NextDelay(attempt)

		if e.onRetry != nil {
			e.onRetry(attempt, lastErr, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		lastErr = operation(ctx)
		if lastErr == nil {
			return nil
		}

		if !e.classifier.IsTransient(lastErr) {
			return lastErr
		}
	}

	return lastErr
}

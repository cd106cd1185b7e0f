package pgdata

import "time"

// ErrorClassifier determines whether an error is an interface-level
// (transport) failure eligible for pool recreation and retry, or a fatal
// statement error that must propagate unchanged.
type ErrorClassifier interface {
	// IsTransient returns true if the error indicates a broken or unreachable
	// transport and the operation should be retried against a fresh pool.
	IsTransient(err error) bool
}

// BackoffStrategy calculates the delay before the next retry attempt.
type BackoffStrategy interface {
	// NextDelay returns the duration to wait before the next attempt.
	// attempt is zero-indexed (0 = first retry, 1 = second retry, etc.)
	NextDelay(attempt int) time.Duration

	// MaxAttempts returns the maximum number of retry attempts
	// (0 = no retries, -1 = unlimited).
	MaxAttempts() int
}

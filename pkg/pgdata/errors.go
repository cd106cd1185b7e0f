package pgdata

import (
	"errors"
	"strings"
)

// Sentinel errors for the failure classes surfaced by this library.
// Callers distinguish them with errors.Is().
//
// Example usage:
//
//	rows, err := exec.Query(ctx, "SELECT ...")
//	if errors.Is(err, pgdata.ErrConnection) {
//	    // retries were exhausted, the database is unreachable
//	}
var (
	// ErrSchema indicates invalid column-type construction parameters.
	// Raised synchronously by pkg/sqltype constructors, never retried.
	ErrSchema = errors.New("invalid schema definition")

	// ErrQuery indicates a statement failed for a reason other than a broken
	// transport (syntax error, constraint violation, type mismatch).
	ErrQuery = errors.New("query failed")

	// ErrConnection indicates the transport to the database is broken or the
	// database is unreachable. Returned by Start when the initial connection
	// fails and by the executor after retry exhaustion.
	ErrConnection = errors.New("database connection failed")

	// ErrResponse indicates a malformed or unexpected query response, such as
	// a row that cannot be decoded.
	ErrResponse = errors.New("unexpected query response")

	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ExitCodeForError returns the appropriate process exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrSchema):
		return ExitConfigError
	case errors.Is(err, ErrConnection):
		return ExitConnectionError
	case errors.Is(err, ErrQuery), errors.Is(err, ErrResponse):
		return ExitQueryError
	}

	// Connection failures reported by the driver before our wrapping applies.
	errStr := err.Error()
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}

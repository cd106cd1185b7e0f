package pgdata

import "time"

// Exit codes for semantic error classification, following Unix conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Operation completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or schema parameters
	ExitConnectionError = 11 // Failed to connect to database
	ExitQueryError      = 13 // Statement execution failed
)

const (
	// DefaultRetryInitialDelay is the default delay before the first retry
	// of a query that failed on a broken transport.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts
	// after the initial one. The source system retried without bound; the cap
	// makes transport failures terminal instead of recursive.
	DefaultRetryMaxAttempts = 3

	// DefaultHost is the database host used when none is configured.
	DefaultHost = "localhost"

	// DefaultPort is the PostgreSQL port used when none is configured.
	DefaultPort = 5432

	// DefaultUsername is the database role used when none is configured.
	DefaultUsername = "postgres"

	// DefaultDatabase is the database name used when none is configured.
	DefaultDatabase = "avibot"
)

package retry

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avibot-labs/pgdata/pkg/pgdata"
)

// PostgreSQL error code classes for transport-level conditions.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	// Class 08 - Connection Exception
	pgClassConnectionException = "08"

	// Class 57 - Operator Intervention
	pgCodeAdminShutdown    = "57P01"
	pgCodeCrashShutdown    = "57P02"
	pgCodeCannotConnectNow = "57P03"

	// Class 53 - Insufficient Resources
	pgCodeTooManyConnections = "53300"
)

// interfaceFailurePatterns are driver error messages that indicate a dead
// socket rather than a statement failure. pgx reports most of these as plain
// errors without a SQLSTATE.
var interfaceFailurePatterns = []string{
	"conn closed",
	"closed pool",
	"connection refused",
	"connection reset",
	"broken pipe",
	"server closed the connection",
	"unexpected eof",
	"i/o timeout",
	"no such host",
	"network is unreachable",
}

// TransportClassifier decides whether an error is an interface failure: the
// transport to the database is broken and the call may be retried against a
// recreated pool. Statement errors (syntax, constraints, type mismatches) and
// caller cancellation are not transient.
type TransportClassifier struct{}

// NewTransportClassifier creates a TransportClassifier.
func NewTransportClassifier() *TransportClassifier {
	return &TransportClassifier{}
}

// IsTransient reports whether err is an interface-level failure.
func (c *TransportClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	// Cancellation belongs to the caller; never retry it away.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return c.isTransientPgError(pgErr)
	}

	if c.isNetworkError(err) {
		return true
	}

	errMsg := strings.ToLower(err.Error())
	for _, pattern := range interfaceFailurePatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return false
}

// isTransientPgError checks SQLSTATE codes for conditions where the server
// itself reports the connection as unusable.
func (c *TransportClassifier) isTransientPgError(pgErr *pgconn.PgError) bool {
	if strings.HasPrefix(pgErr.Code, pgClassConnectionException) {
		return true
	}

	switch pgErr.Code {
	case pgCodeAdminShutdown, pgCodeCrashShutdown, pgCodeCannotConnectNow:
		return true
	case pgCodeTooManyConnections:
		return true
	}

	return false
}

func (c *TransportClassifier) isNetworkError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() || dnsErr.Timeout()
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Temporary() || opErr.Timeout() {
			return true
		}
		if opErr.Err != nil {
			return errors.Is(opErr.Err, syscall.ECONNREFUSED) ||
				errors.Is(opErr.Err, syscall.ECONNRESET) ||
				errors.Is(opErr.Err, syscall.EPIPE) ||
				errors.Is(opErr.Err, syscall.ENETUNREACH) ||
				errors.Is(opErr.Err, syscall.EHOSTUNREACH)
		}
	}

	return false
}

var _ pgdata.ErrorClassifier = (*TransportClassifier)(nil)

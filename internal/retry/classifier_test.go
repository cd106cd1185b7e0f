package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTransportClassifier_IsTransient(t *testing.T) {
	c := NewTransportClassifier()

	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"Nil error", nil, false},
		{"Context canceled", context.Canceled, false},
		{"Context deadline exceeded", context.DeadlineExceeded, false},
		{"Wrapped cancellation", fmt.Errorf("query failed: %w", context.Canceled), false},

		{"Connection exception class", &pgconn.PgError{Code: "08006"}, true},
		{"Connection does not exist", &pgconn.PgError{Code: "08003"}, true},
		{"Admin shutdown", &pgconn.PgError{Code: "57P01"}, true},
		{"Crash shutdown", &pgconn.PgError{Code: "57P02"}, true},
		{"Cannot connect now", &pgconn.PgError{Code: "57P03"}, true},
		{"Too many connections", &pgconn.PgError{Code: "53300"}, true},

		{"Syntax error", &pgconn.PgError{Code: "42601"}, false},
		{"Undefined table", &pgconn.PgError{Code: "42P01"}, false},
		{"Unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"Serialization failure", &pgconn.PgError{Code: "40001"}, false},

		{"Connection refused syscall", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, true},
		{"Connection reset syscall", &net.OpError{Op: "read", Err: syscall.ECONNRESET}, true},
		{"Broken pipe syscall", &net.OpError{Op: "write", Err: syscall.EPIPE}, true},
		{"Host unreachable syscall", &net.OpError{Op: "dial", Err: syscall.EHOSTUNREACH}, true},

		{"Closed conn message", errors.New("conn closed"), true},
		{"Closed pool message", errors.New("acquire: closed pool"), true},
		{"Server hangup message", errors.New("FATAL: server closed the connection unexpectedly"), true},
		{"Unexpected EOF message", errors.New("unexpected EOF"), true},
		{"IO timeout message", errors.New("read tcp 127.0.0.1:5432: i/o timeout"), true},

		{"Plain statement error", errors.New("no rows in result set"), false},
		{"Arbitrary error", errors.New("something else entirely"), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.transient, c.IsTransient(tc.err))
		})
	}
}

func TestTransportClassifier_WrappedPgError(t *testing.T) {
	c := NewTransportClassifier()

	wrapped := fmt.Errorf("executing statement: %w", &pgconn.PgError{Code: "08006"})
	assert.True(t, c.IsTransient(wrapped))

	wrappedFatal := fmt.Errorf("executing statement: %w", &pgconn.PgError{Code: "42601"})
	assert.False(t, c.IsTransient(wrappedFatal))
}

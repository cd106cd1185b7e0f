package pgdata

import (
	"errors"
	"fmt"
	"time"
)

// ConnectionConfig holds the parameters needed to reach a PostgreSQL server.
// The zero value is completed by ApplyDefaults; only Password has no default.
//
// The assembled connection URI contains the password in cleartext and must
// never be logged directly. internal/db provides a redacted rendering for
// diagnostics.
type ConnectionConfig struct {
	// Host is the database server hostname (default "localhost").
	Host string

	// Port is the database server port (default 5432).
	Port int

	// Username is the database role (default "postgres").
	Username string

	// Password is the database role password. Required.
	Password string

	// Database is the database name (default "avibot").
	Database string

	// SSLMode is the libpq sslmode parameter (empty = driver default).
	SSLMode string

	// AppName is reported to the server as application_name.
	AppName string

	// ConnectTimeout bounds the initial connection attempt (0 = no limit).
	ConnectTimeout time.Duration
}

// ApplyDefaults fills zero-value fields with the standard defaults.
func (c *ConnectionConfig) ApplyDefaults() {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Username == "" {
		c.Username = DefaultUsername
	}
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
}

// Validate checks that the configuration can produce a usable connection URI.
// It returns a multi-error when several fields are invalid.
func (c *ConnectionConfig) Validate() error {
	var errs []error

	if c.Password == "" {
		errs = append(errs, fmt.Errorf("password is required: %w", ErrInvalidConfig))
	}

	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range: %w", c.Port, ErrInvalidConfig))
	}

	if c.ConnectTimeout < 0 {
		errs = append(errs, fmt.Errorf("connect timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

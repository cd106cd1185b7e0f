// Package pgdata defines the public contract of the pgdata library: the
// connection abstractions, the error taxonomy, the logging interface, and the
// configuration types used by the resilient PostgreSQL access core in
// internal/db.
//
// The package contains no pgx-backed implementations itself. Concrete types
// live in internal packages and are exposed through these interfaces so that
// callers (and tests) never depend on driver-specific types directly.
package pgdata

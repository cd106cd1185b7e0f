// Package db implements the resilient PostgreSQL access core: the
// pool-owning Manager with automatic recreation after transport failures, the
// query/transaction Executor with bounded retry, and the notification
// listener registry running on a dedicated long-lived connection.
//
// # Ownership model
//
// Manager owns the pgx connection pool exclusively. One connection is checked
// out at Start and held for the manager's lifetime to receive LISTEN/NOTIFY
// traffic; it never serves ordinary queries and is released only during Close
// (or replaced wholesale by Recreate). All other connections follow the
// normal per-call checkout discipline through Executor.
//
// # Recovery
//
// An interface-level failure (broken socket, dead server) observed by the
// Executor triggers exactly one pool recreation per retry attempt, with
// exponential backoff between attempts and a terminal pgdata.ErrConnection
// once the attempt cap is reached. Statement errors are never retried.
package db

// Package retry implements the bounded recovery policy for transport-level
// database failures: an error classifier that separates interface failures
// from statement errors, an exponential backoff strategy, and an executor
// that runs an operation with a capped number of delayed retries.
//
// The executor replaces unbounded retry-on-failure recursion with an explicit
// attempt counter, so a persistently unreachable database produces a terminal
// error instead of infinite recursion.
package retry

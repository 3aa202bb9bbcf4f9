// Package checks runs the configured static checkers (type checkers,
// linters) concurrently and reports per-check outcomes, along with
// availability probing for the external binaries the workspace needs.
package checks

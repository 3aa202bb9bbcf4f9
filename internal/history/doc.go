// Package history persists a journal of workspace runs (type generation,
// checks, dev sessions) in SQLite so the CLI and daemon can report what ran
// and how it ended. Multiple processes share the database through WAL mode.
package history

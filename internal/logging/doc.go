// Package logging configures slog-based structured logging for the loom CLI
// and daemon. Output is JSON when writing to files or pipes and a compact
// console format when attached to a terminal.
package logging

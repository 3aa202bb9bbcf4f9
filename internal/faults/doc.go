// Package faults defines the canonical error taxonomy shared by the CLI,
// the daemon, and the HTTP API. Errors are tagged with sentinel markers so
// surfaces can classify failures without string matching.
package faults

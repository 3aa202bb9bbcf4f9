// Command loom is the workspace CLI: it runs the backend and frontend
// dev servers, executes type checks, generates TypeScript definitions
// from the API models, and reports daemon status and run history.
package main

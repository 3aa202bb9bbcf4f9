// Package server implements the backend HTTP API: the health endpoint,
// run history, and on-demand type generation. Responses use the
// canonical error shape {message, details}, with request validation
// failures reported as 422 {detail: [...]}.
package server

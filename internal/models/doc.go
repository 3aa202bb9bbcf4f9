// Package models defines the data transfer objects the backend API exposes.
// These types are the source of truth for the TypeScript definitions the
// frontend consumes; `loom gen types` converts the registry assembled here.
package models

// Package schema derives JSON Schema documents from registered Go model types.
//
// The registry plays the role a module scan plays in dynamic languages: every
// DTO the backend exposes is registered once, and Generate produces a single
// master document whose $defs section holds the schema for each model. The
// master document is what the TypeScript generator consumes, which keeps the
// emitted definitions free of duplicates.
package schema

// Package tsgen converts master JSON Schema documents into TypeScript
// definition files. A built-in emitter covers the schema subset the model
// registry produces; an external json-schema-to-typescript command can be
// substituted when the frontend toolchain should own the conversion.
package tsgen

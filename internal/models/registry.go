package models

import "loom/internal/schema"

// Registry assembles the schema registry for every DTO exposed to the
// frontend. New API payloads must be added here or they will be missing from
// the generated TypeScript definitions.
func Registry() *schema.Registry {
	registry := schema.NewRegistry()
	registry.MustRegister(
		StatusResponse{},
		ErrorPayload{},
		ValidationIssue{},
		ValidationErrorPayload{},
		RunRecord{},
		CheckOutcome{},
		TypegenRequest{},
		TypegenSummary{},
		DependencyStatus{},
		DaemonStatus{},
	)
	return registry
}

package models_test

import (
	"testing"

	"loom/internal/models"
)

func TestRegistryContainsAllDTOs(t *testing.T) {
	registry := models.Registry()
	names := registry.Names()
	want := []string{
		"CheckOutcome",
		"DaemonStatus",
		"DependencyStatus",
		"ErrorPayload",
		"RunRecord",
		"StatusResponse",
		"TypegenRequest",
		"TypegenSummary",
		"ValidationErrorPayload",
		"ValidationIssue",
	}
	if len(names) != len(want) {
		t.Fatalf("expected %d models, got %d: %v", len(want), len(names), names)
	}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("expected %s at %d, got %s", name, i, names[i])
		}
	}
}

func TestRegistryGeneratesEnums(t *testing.T) {
	master, err := models.Registry().Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, enum := range []string{"RunKind", "RunStatus"} {
		def, ok := master.Defs[enum]
		if !ok {
			t.Fatalf("expected %s definition", enum)
		}
		if len(def.Enum) == 0 {
			t.Fatalf("expected enum values for %s", enum)
		}
	}
}

func TestParseRunKind(t *testing.T) {
	if kind, ok := models.ParseRunKind(" Typegen "); !ok || kind != models.RunKindTypegen {
		t.Fatalf("expected typegen, got %q ok=%v", kind, ok)
	}
	if _, ok := models.ParseRunKind("bogus"); ok {
		t.Fatal("expected bogus kind to be rejected")
	}
}

func TestTypegenRequestValidation(t *testing.T) {
	empty := ""
	notTS := "models.json"
	valid := "dtos.ts"

	if issues := (models.TypegenRequest{Output: &valid}).Validate(); len(issues) != 0 {
		t.Fatalf("expected valid request, got %v", issues)
	}
	if issues := (models.TypegenRequest{Output: &empty}).Validate(); len(issues) != 1 {
		t.Fatalf("expected one issue for empty output, got %v", issues)
	}
	if issues := (models.TypegenRequest{Output: &notTS}).Validate(); len(issues) != 1 {
		t.Fatalf("expected one issue for non-ts output, got %v", issues)
	}
	if issues := (models.TypegenRequest{Output: &notTS, SchemaOnly: true}).Validate(); len(issues) != 0 {
		t.Fatalf("schema-only output may use any extension, got %v", issues)
	}
	if issues := (models.TypegenRequest{Exclude: []string{"Good", " "}}).Validate(); len(issues) != 1 {
		t.Fatalf("expected one issue for blank exclude, got %v", issues)
	}
}

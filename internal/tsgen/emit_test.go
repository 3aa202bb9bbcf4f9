package tsgen_test

import (
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"loom/internal/schema"
	"loom/internal/tsgen"
)

type Mood string

func (Mood) EnumValues() []string { return []string{"happy", "grumpy"} }

type Profile struct {
	DisplayName string   `json:"display_name"`
	Mood        Mood     `json:"mood"`
	Tags        []string `json:"tags,omitempty"`
}

type Session struct {
	ID        string            `json:"id"`
	Profile   Profile           `json:"profile"`
	Window    [2]int            `json:"window"`
	Meta      map[string]string `json:"meta,omitempty"`
	StartedAt time.Time         `json:"started_at"`
	Note      *string           `json:"note,omitempty"`
}

func generateMaster(t *testing.T) *schema.Node {
	t.Helper()
	registry := schema.NewRegistry()
	registry.MustRegister(Session{})
	master, err := registry.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return master
}

func TestEmitGolden(t *testing.T) {
	master := generateMaster(t)
	out, err := tsgen.Emit(master, tsgen.Options{Banner: true})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	g := goldie.New(t)
	g.Assert(t, "models", []byte(out))
}

func TestEmitWithoutBanner(t *testing.T) {
	master := generateMaster(t)
	out, err := tsgen.Emit(master, tsgen.Options{})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if strings.Contains(out, "tslint:disable") {
		t.Fatal("banner should be omitted")
	}
	if !strings.HasPrefix(out, "export type Mood") {
		t.Fatalf("unexpected prefix: %q", out[:40])
	}
}

func TestEmitNeverContainsMaster(t *testing.T) {
	master := generateMaster(t)
	out, err := tsgen.Emit(master, tsgen.Options{Banner: true})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if strings.Contains(out, schema.MasterName) {
		t.Fatal("master interface leaked into output")
	}
}

func TestEmitNormalizesLooseTitles(t *testing.T) {
	master := &schema.Node{
		Title: schema.MasterName,
		Type:  "object",
		Defs: map[string]*schema.Node{
			"run record": {
				Type:       "object",
				Properties: map[string]*schema.Node{"id": {Type: "string"}},
				Required:   []string{"id"},
			},
		},
	}
	out, err := tsgen.Emit(master, tsgen.Options{})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(out, "export interface RunRecord {") {
		t.Fatalf("expected normalized interface name, got:\n%s", out)
	}
}

func TestEmitOpenObjectsGainIndexSignature(t *testing.T) {
	master := &schema.Node{
		Title: schema.MasterName,
		Type:  "object",
		Defs: map[string]*schema.Node{
			"Extras": {
				Type:       "object",
				Properties: map[string]*schema.Node{"id": {Type: "string"}},
				Required:   []string{"id"},
			},
		},
	}
	out, err := tsgen.Emit(master, tsgen.Options{})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(out, "[k: string]: unknown;") {
		t.Fatalf("open object should carry an index signature, got:\n%s", out)
	}
}

func TestEmitRejectsEmptyMaster(t *testing.T) {
	if _, err := tsgen.Emit(&schema.Node{}, tsgen.Options{}); err == nil {
		t.Fatal("expected error for empty master document")
	}
}

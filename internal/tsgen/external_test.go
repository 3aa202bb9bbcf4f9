package tsgen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"loom/internal/faults"
	"loom/internal/schema"
)

func TestStripMasterInterface(t *testing.T) {
	input := strings.Join([]string{
		"export interface Profile {",
		"  mood: string;",
		"}",
		"",
		"export interface _Master_ {",
		"  Profile: Profile;",
		"}",
		"",
		"export type Mood = \"happy\";",
		"",
	}, "\n")

	out := StripMasterInterface(input)
	if strings.Contains(out, "_Master_") {
		t.Fatalf("master interface not removed:\n%s", out)
	}
	if !strings.Contains(out, "export interface Profile {") {
		t.Fatal("unrelated interface removed")
	}
	if !strings.Contains(out, "export type Mood") {
		t.Fatal("trailing definitions removed")
	}
}

func TestStripMasterInterfaceNoMaster(t *testing.T) {
	input := "export interface Profile {\n  mood: string;\n}\n"
	if out := StripMasterInterface(input); out != input {
		t.Fatalf("output should be unchanged, got:\n%s", out)
	}
}

func TestNewConverterRejectsEmptyCommand(t *testing.T) {
	if _, err := NewConverter("   "); !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestNewConverterSplitsArguments(t *testing.T) {
	converter, err := NewConverter("yarn json2ts")
	if err != nil {
		t.Fatalf("NewConverter: %v", err)
	}
	if converter.command != "yarn" || len(converter.args) != 1 || converter.args[0] != "json2ts" {
		t.Fatalf("unexpected split: %q %v", converter.command, converter.args)
	}
}

func TestConverterPostProcessesOutput(t *testing.T) {
	restore := commandContext
	defer func() { commandContext = restore }()

	generated := strings.Join([]string{
		"export interface Profile {",
		"  mood: string;",
		"}",
		"export interface _Master_ {",
		"  Profile: Profile;",
		"}",
		"",
	}, "\n")

	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		var output string
		for i := range args {
			if args[i] == "-o" && i+1 < len(args) {
				output = args[i+1]
			}
		}
		script := fmt.Sprintf("cat > %q <<'TSEOF'\n%sTSEOF", output, generated)
		return exec.CommandContext(ctx, "sh", "-c", script)
	}

	converter, err := NewConverter("json2ts")
	if err != nil {
		t.Fatalf("NewConverter: %v", err)
	}

	master := &schema.Node{Title: schema.MasterName, Type: "object"}
	output := filepath.Join(t.TempDir(), "dtos.ts")
	if err := converter.Convert(context.Background(), master, output, true); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	content, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	text := string(content)
	if !strings.HasPrefix(text, "/* tslint:disable */") {
		t.Fatalf("banner missing:\n%s", text)
	}
	if strings.Contains(text, "_Master_") {
		t.Fatalf("master interface survived post-processing:\n%s", text)
	}
	if !strings.Contains(text, "export interface Profile {") {
		t.Fatalf("generated content missing:\n%s", text)
	}
}

func TestConverterSurfacesToolFailure(t *testing.T) {
	restore := commandContext
	defer func() { commandContext = restore }()

	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", "-c", "echo 'json2ts: boom' >&2; exit 3")
	}

	converter, err := NewConverter("json2ts")
	if err != nil {
		t.Fatalf("NewConverter: %v", err)
	}
	master := &schema.Node{Title: schema.MasterName, Type: "object"}
	err = converter.Convert(context.Background(), master, filepath.Join(t.TempDir(), "dtos.ts"), false)
	if !errors.Is(err, faults.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected tool output in error, got %v", err)
	}
}

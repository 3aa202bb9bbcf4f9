package tsgen

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"loom/internal/faults"
	"loom/internal/schema"
)

var commandContext = exec.CommandContext

// Converter invokes an external json-schema-to-typescript command. The
// command string may carry leading arguments ("yarn json2ts").
type Converter struct {
	command string
	args    []string
}

// NewConverter parses the configured converter command.
func NewConverter(command string) (*Converter, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, faults.Wrap(faults.ErrConfiguration, "tsgen", "converter", "json2ts command is empty", nil)
	}
	return &Converter{command: fields[0], args: fields[1:]}, nil
}

// Convert writes the master schema to a scratch file, runs the external
// converter against it, and post-processes the result: the synthetic master
// interface is removed and the do-not-edit banner prepended.
func (c *Converter) Convert(ctx context.Context, master *schema.Node, output string, banner bool) error {
	payload, err := master.MarshalIndent()
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	scratchDir, err := os.MkdirTemp("", "loom-typegen-*")
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratchDir)

	schemaPath := filepath.Join(scratchDir, "schema.json")
	if err := os.WriteFile(schemaPath, payload, 0o644); err != nil {
		return fmt.Errorf("write schema: %w", err)
	}

	args := append([]string{}, c.args...)
	args = append(args, "-i", schemaPath, "-o", output, "--bannerComment", "")
	cmd := commandContext(ctx, c.command, args...)
	if combined, err := cmd.CombinedOutput(); err != nil {
		detail := strings.TrimSpace(string(combined))
		if detail != "" {
			detail = tail(detail, 6)
		}
		return faults.Wrap(faults.ErrExternalTool, "tsgen", c.command, detail, err)
	}

	generated, err := os.ReadFile(output)
	if err != nil {
		return fmt.Errorf("read converter output: %w", err)
	}
	cleaned := StripMasterInterface(string(generated))
	if banner {
		cleaned = Banner + cleaned
	}
	if err := os.WriteFile(output, []byte(cleaned), 0o644); err != nil {
		return fmt.Errorf("rewrite converter output: %w", err)
	}
	return nil
}

// StripMasterInterface removes the synthetic master interface block from
// generated TypeScript. The master model exists only to deduplicate nested
// definitions and must never reach the frontend.
func StripMasterInterface(ts string) string {
	lines := strings.Split(ts, "\n")
	start, end := -1, -1
	opener := "export interface " + schema.MasterName + " {"
	for i, line := range lines {
		trimmed := strings.TrimRight(line, "\r")
		if trimmed == opener {
			start = i
			continue
		}
		if start >= 0 && trimmed == "}" {
			end = i
			break
		}
	}
	if start < 0 || end < 0 {
		return ts
	}
	kept := make([]string, 0, len(lines)-(end-start+1))
	kept = append(kept, lines[:start]...)
	kept = append(kept, lines[end+1:]...)
	return strings.Join(kept, "\n")
}

func tail(text string, lines int) string {
	split := strings.Split(strings.TrimSpace(text), "\n")
	if len(split) <= lines {
		return strings.Join(split, "\n")
	}
	return strings.Join(split[len(split)-lines:], "\n")
}

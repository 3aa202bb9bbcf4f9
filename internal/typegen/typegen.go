// Package typegen orchestrates schema generation and TypeScript emission for
// the configured model registry, the Go counterpart of the workspace's
// generate-types script.
package typegen

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"loom/internal/logging"
	"loom/internal/schema"
	"loom/internal/tsgen"
)

// Mode identifies which converter produced the output.
const (
	ModeNative   = "native"
	ModeExternal = "external"
	ModeSchema   = "schema"
)

// Options configures a generation run.
type Options struct {
	Registry *schema.Registry
	Output   string
	Exclude  []string
	// Json2TSCmd switches to an external converter command when non-empty.
	Json2TSCmd string
	Banner     bool
	// SchemaOnly writes the master JSON Schema instead of TypeScript.
	SchemaOnly bool
	Logger     *slog.Logger
}

// Result summarizes a completed generation run.
type Result struct {
	Output   string
	Models   []string
	Bytes    int
	Duration time.Duration
	Mode     string
}

// Run generates the master schema and writes the requested artifact.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("typegen: registry is required")
	}
	if opts.Output == "" {
		return nil, fmt.Errorf("typegen: output path is required")
	}
	logger := logging.NewComponentLogger(opts.Logger, "typegen")
	started := time.Now()

	master, err := opts.Registry.Generate(opts.Exclude...)
	if err != nil {
		return nil, err
	}
	models := make([]string, 0, len(master.Defs))
	for name := range master.Defs {
		models = append(models, name)
	}
	sort.Strings(models)

	if err := os.MkdirAll(filepath.Dir(opts.Output), 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	result := &Result{Output: opts.Output, Models: models}
	switch {
	case opts.SchemaOnly:
		payload, err := master.MarshalIndent()
		if err != nil {
			return nil, fmt.Errorf("marshal schema: %w", err)
		}
		if err := os.WriteFile(opts.Output, append(payload, '\n'), 0o644); err != nil {
			return nil, fmt.Errorf("write schema: %w", err)
		}
		result.Bytes = len(payload) + 1
		result.Mode = ModeSchema
	case opts.Json2TSCmd != "":
		converter, err := tsgen.NewConverter(opts.Json2TSCmd)
		if err != nil {
			return nil, err
		}
		if err := converter.Convert(ctx, master, opts.Output, opts.Banner); err != nil {
			return nil, err
		}
		info, err := os.Stat(opts.Output)
		if err != nil {
			return nil, fmt.Errorf("stat output: %w", err)
		}
		result.Bytes = int(info.Size())
		result.Mode = ModeExternal
	default:
		ts, err := tsgen.Emit(master, tsgen.Options{Banner: opts.Banner})
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(opts.Output, []byte(ts), 0o644); err != nil {
			return nil, fmt.Errorf("write typescript: %w", err)
		}
		result.Bytes = len(ts)
		result.Mode = ModeNative
	}

	result.Duration = time.Since(started)
	logger.Info("definitions written",
		logging.String("output", result.Output),
		logging.Int("models", len(result.Models)),
		logging.Int("bytes", result.Bytes),
		logging.String("mode", result.Mode),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

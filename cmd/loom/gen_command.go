package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"loom/internal/models"
	"loom/internal/typegen"
)

func newGenCommand(ctx *commandContext) *cobra.Command {
	genCmd := &cobra.Command{
		Use:   "gen",
		Short: "Code generation",
	}
	genCmd.AddCommand(newGenTypesCommand(ctx))
	return genCmd
}

func newGenTypesCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string
	var excludeFlag []string
	var schemaOnly bool
	var remote bool

	cmd := &cobra.Command{
		Use:   "types",
		Short: "Generate TypeScript definitions from the API models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			output := cfg.TypeGenOutput()
			if trimmed := strings.TrimSpace(outputFlag); trimmed != "" {
				output = trimmed
			}
			exclude := cfg.TypeGen.Exclude
			if len(excludeFlag) > 0 {
				exclude = excludeFlag
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if remote {
				return genTypesRemote(signalCtx, cmd, ctx, output, exclude, schemaOnly)
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			record := beginHistoryRun(signalCtx, cfg, logger, models.RunKindTypegen, "output="+output)
			result, runErr := typegen.Run(signalCtx, typegen.Options{
				Registry:   models.Registry(),
				Output:     output,
				Exclude:    exclude,
				Json2TSCmd: cfg.TypeGen.Json2TSCmd,
				Banner:     cfg.TypeGen.Banner,
				SchemaOnly: schemaOnly,
				Logger:     logger,
			})
			finishHistoryRun(logger, record, runErr)
			if runErr != nil {
				return fmt.Errorf("generate types: %w", runErr)
			}

			printGenSummary(cmd, result.Models, result.Bytes, result.Mode, result.Output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output file path (defaults to the configured target)")
	cmd.Flags().StringSliceVar(&excludeFlag, "exclude", nil, "Model names to exclude from generation")
	cmd.Flags().BoolVar(&schemaOnly, "schema-only", false, "Write the master JSON Schema instead of TypeScript")
	cmd.Flags().BoolVar(&remote, "remote", false, "Ask the running daemon to generate instead of doing it locally")
	return cmd
}

// genTypesRemote delegates generation to the daemon, which writes the
// output relative to its own working directory and records the run.
func genTypesRemote(runCtx context.Context, cmd *cobra.Command, ctx *commandContext, output string, exclude []string, schemaOnly bool) error {
	apiClient, err := ctx.newClient()
	if err != nil {
		return err
	}
	summary, err := apiClient.Typegen(runCtx, models.TypegenRequest{
		Output:     &output,
		Exclude:    exclude,
		SchemaOnly: schemaOnly,
	})
	if err != nil {
		return fmt.Errorf("remote type generation: %w", err)
	}
	printGenSummary(cmd, summary.Models, summary.Bytes, summary.Mode, summary.Output)
	return nil
}

func printGenSummary(cmd *cobra.Command, modelNames []string, bytes int, mode, output string) {
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d models (%d bytes, %s mode) to %s\n",
		len(modelNames), bytes, mode, output)
}

package main

import (
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"loom/internal/checks"
	"loom/internal/models"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Workspace checks",
	}
	checkCmd.AddCommand(newCheckTypesCommand(ctx))
	checkCmd.AddCommand(newCheckDepsCommand(ctx))
	return checkCmd
}

func newCheckTypesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "Run all configured type checkers concurrently",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			record := beginHistoryRun(signalCtx, cfg, logger, models.RunKindCheck, "check types")
			runner := checks.NewRunner(logger)
			outcomes, runErr := runner.RunAll(signalCtx, cfg.Checks)
			finishHistoryRun(logger, record, runErr)

			rows := make([][]string, 0, len(outcomes))
			for _, outcome := range outcomes {
				result := "pass"
				if !outcome.Passed {
					result = "FAIL"
				}
				rows = append(rows, []string{
					outcome.Name,
					result,
					strconv.FormatInt(outcome.DurationMS, 10) + " ms",
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Check", "Result", "Elapsed"}, rows, 2))

			for _, outcome := range outcomes {
				if !outcome.Passed && outcome.Output != "" {
					fmt.Fprintf(out, "\n--- %s ---\n%s\n", outcome.Name, outcome.Output)
				}
			}
			return runErr
		},
	}
}

func newCheckDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Verify required external binaries are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := checks.CheckBinaries(checks.Requirements(cfg))
			rows := make([][]string, 0, len(statuses))
			missingRequired := false
			for _, status := range statuses {
				detail := status.Detail
				if status.Available {
					detail = "ok"
				} else if !status.Optional {
					missingRequired = true
				}
				rows = append(rows, []string{
					status.Name,
					status.Command,
					yesNo(status.Available),
					detail,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Name", "Command", "Available", "Detail"}, rows))

			if missingRequired {
				return fmt.Errorf("required binaries are missing")
			}
			return nil
		},
	}
}

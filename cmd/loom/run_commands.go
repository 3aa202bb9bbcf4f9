package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"loom/internal/config"
	"loom/internal/devproc"
	"loom/internal/history"
	"loom/internal/logging"
	"loom/internal/models"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run workspace dev servers",
	}
	runCmd.AddCommand(newRunBackendCommand(ctx))
	runCmd.AddCommand(newRunWebCommand(ctx))
	runCmd.AddCommand(newRunAllCommand(ctx))
	return runCmd
}

func newRunBackendCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "backend",
		Short: "Run the backend server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcesses(cmd, ctx, models.RunKindBackend, backendCommand)
		},
	}
}

func newRunWebCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "web",
		Short: "Run the frontend dev server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcesses(cmd, ctx, models.RunKindDev, webCommand)
		},
	}
}

func newRunAllCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run backend and frontend dev servers together",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcesses(cmd, ctx, models.RunKindDev, backendCommand, webCommand)
		},
	}
}

func backendCommand(cfg *config.Config) devproc.Command {
	return devproc.Command{
		Name: "backend",
		Path: cfg.Backend.Command,
		Args: cfg.Backend.Args,
		Dir:  cfg.Paths.WorkspaceRoot,
	}
}

func webCommand(cfg *config.Config) devproc.Command {
	return devproc.Command{
		Name: "web",
		Path: cfg.Web.Command,
		Args: cfg.Web.Args,
		Dir:  cfg.WebDir(),
	}
}

func runProcesses(cmd *cobra.Command, ctx *commandContext, kind models.RunKind, builders ...func(*config.Config) devproc.Command) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	commands := make([]devproc.Command, 0, len(builders))
	names := ""
	for i, build := range builders {
		command := build(cfg)
		commands = append(commands, command)
		if i > 0 {
			names += "+"
		}
		names += command.Name
	}

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	record := beginHistoryRun(signalCtx, cfg, logger, kind, names)
	grace := time.Duration(cfg.Workflow.StopGraceSeconds) * time.Second
	runner := devproc.NewRunner(logger, grace)

	runErr := runner.RunAll(signalCtx, commands)
	finishHistoryRun(logger, record, runErr)
	if runErr != nil {
		return fmt.Errorf("run %s: %w", names, runErr)
	}
	return nil
}

type historyRun struct {
	store  *history.Store
	record *models.RunRecord
}

// beginHistoryRun records the run start, tolerating history store
// failures so dev servers still launch when the log dir is read-only.
func beginHistoryRun(ctx context.Context, cfg *config.Config, logger *slog.Logger, kind models.RunKind, detail string) *historyRun {
	store, err := history.Open(cfg)
	if err != nil {
		logger.Warn("history store unavailable", logging.Error(err))
		return nil
	}
	record, err := store.Begin(ctx, kind, detail)
	if err != nil {
		logger.Warn("record run start failed", logging.Error(err))
		_ = store.Close()
		return nil
	}
	return &historyRun{store: store, record: record}
}

func finishHistoryRun(logger *slog.Logger, run *historyRun, runErr error) {
	if run == nil {
		return
	}
	status := models.RunStatusSucceeded
	detail := ""
	if runErr != nil {
		status = models.RunStatusFailed
		detail = runErr.Error()
	}
	finishCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := run.store.Finish(finishCtx, run.record.ID, status, detail); err != nil {
		logger.Warn("record run finish failed", logging.Error(err))
	}
	_ = run.store.Close()
}

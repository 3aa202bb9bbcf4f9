package devproc

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"loom/internal/faults"
	"loom/internal/logging"
)

var newCommand = exec.Command

// Command describes a single workspace process to supervise.
type Command struct {
	Name string
	Path string
	Args []string
	Dir  string
	Env  []string
}

// Runner launches commands in their own process groups and streams
// their combined output to the logger line by line.
type Runner struct {
	logger *slog.Logger
	grace  time.Duration
}

// NewRunner constructs a runner. The grace period bounds how long a
// process group gets between SIGTERM and SIGKILL during teardown.
func NewRunner(logger *slog.Logger, grace time.Duration) *Runner {
	if grace <= 0 {
		grace = 5 * time.Second
	}
	return &Runner{
		logger: logging.NewComponentLogger(logger, "devproc"),
		grace:  grace,
	}
}

// Run starts the command and blocks until it exits or the context is
// cancelled. Cancellation sends SIGTERM to the whole process group and
// escalates to SIGKILL after the grace period.
func (r *Runner) Run(ctx context.Context, command Command) error {
	if strings.TrimSpace(command.Path) == "" {
		return faults.Wrap(faults.ErrConfiguration, "devproc", "run", "process command is empty", nil)
	}
	name := command.Name
	if name == "" {
		name = command.Path
	}
	logger := r.logger.With(logging.String("process", name))

	cmd := newCommand(command.Path, command.Args...) //nolint:gosec
	cmd.Dir = command.Dir
	if len(command.Env) > 0 {
		cmd.Env = append(os.Environ(), command.Env...)
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return faults.Wrap(faults.ErrExternalTool, "devproc", "run",
			fmt.Sprintf("start %s", name), err)
	}
	pgid := cmd.Process.Pid
	logger.Info("process started",
		logging.Int("pid", cmd.Process.Pid),
		logging.String("command", command.Path+" "+strings.Join(command.Args, " ")))

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			r.terminateGroup(logger, pgid)
		case <-done:
		}
	}()

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		logger.Info(line)
	}
	scanErr := scanner.Err()

	waitErr := cmd.Wait()
	close(done)

	if ctx.Err() != nil {
		logger.Info("process stopped", logging.Error(waitErr))
		return ctx.Err()
	}
	if scanErr != nil {
		return fmt.Errorf("read %s output: %w", name, scanErr)
	}
	if waitErr != nil {
		return faults.Wrap(faults.ErrExternalTool, "devproc", "run",
			fmt.Sprintf("%s exited", name), waitErr)
	}
	return nil
}

// terminateGroup asks the process group to stop, then forces the issue
// once the grace period runs out.
func (r *Runner) terminateGroup(logger *slog.Logger, pgid int) {
	if err := unix.Kill(-pgid, unix.SIGTERM); err != nil {
		if err == unix.ESRCH {
			return
		}
		logger.Warn("signal process group", logging.Error(err))
		return
	}
	logger.Debug("sent SIGTERM to process group", logging.Int("pgid", pgid))

	deadline := time.After(r.grace)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := unix.Kill(-pgid, 0); err == unix.ESRCH {
				return
			}
		case <-deadline:
			logger.Warn("grace period elapsed, sending SIGKILL", logging.Int("pgid", pgid))
			_ = unix.Kill(-pgid, unix.SIGKILL)
			return
		}
	}
}

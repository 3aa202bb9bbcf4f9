package devproc

import (
	"context"
	"errors"

	"loom/internal/faults"
	"loom/internal/logging"
)

type runResult struct {
	name string
	err  error
}

// RunAll launches every command concurrently and blocks until all of
// them have stopped. The first process to exit, for any reason, tears
// down the rest of the group. The returned error is the first real
// failure, or nil when the group was stopped by context cancellation
// or every process exited cleanly.
func (r *Runner) RunAll(ctx context.Context, commands []Command) error {
	if len(commands) == 0 {
		return faults.Wrap(faults.ErrConfiguration, "devproc", "run_all", "no processes configured", nil)
	}

	groupCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan runResult, len(commands))
	for _, command := range commands {
		go func(command Command) {
			err := r.Run(groupCtx, command)
			results <- runResult{name: command.Name, err: err}
			// First exit, clean or not, stops the rest.
			cancel()
		}(command)
	}

	var firstErr error
	for range commands {
		result := <-results
		if result.err == nil || errors.Is(result.err, context.Canceled) {
			continue
		}
		if firstErr == nil {
			firstErr = result.err
		} else {
			r.logger.Warn("additional process failure",
				logging.String("process", result.name),
				logging.Error(result.err))
		}
	}

	if ctx.Err() != nil {
		return nil
	}
	return firstErr
}

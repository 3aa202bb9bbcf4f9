package checks

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"loom/internal/config"
	"loom/internal/faults"
	"loom/internal/logging"
	"loom/internal/models"
)

var commandContext = exec.CommandContext

// Requirement defines an external binary the workspace relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Requirements lists the binaries the configured workspace commands need.
func Requirements(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{Name: "backend", Command: cfg.Backend.Command, Description: "backend dev server"},
		{Name: "web", Command: cfg.Web.Command, Description: "web dev server"},
	}
	if parts := strings.Fields(cfg.TypeGen.Json2TSCmd); len(parts) > 0 {
		reqs = append(reqs, Requirement{
			Name:        "json2ts",
			Command:     parts[0],
			Description: "JSON Schema to TypeScript converter",
			Optional:    true,
		})
	}
	for _, check := range cfg.Checks {
		reqs = append(reqs, Requirement{
			Name:        check.Name,
			Command:     check.Command,
			Description: "configured check",
		})
	}
	return reqs
}

// Runner executes configured checks concurrently.
type Runner struct {
	logger *slog.Logger
}

func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{logger: logging.NewComponentLogger(logger, "checks")}
}

// RunAll executes every check at once and returns outcomes in the
// configured order. A nil error means every check passed.
func (r *Runner) RunAll(ctx context.Context, checks []config.Check) ([]models.CheckOutcome, error) {
	if len(checks) == 0 {
		return nil, faults.Wrap(faults.ErrConfiguration, "checks", "run_all", "no checks configured", nil)
	}

	outcomes := make([]models.CheckOutcome, len(checks))
	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func(i int, check config.Check) {
			defer wg.Done()
			outcomes[i] = r.runOne(ctx, check)
		}(i, check)
	}
	wg.Wait()

	for _, outcome := range outcomes {
		if !outcome.Passed {
			return outcomes, faults.Wrap(faults.ErrExternalTool, "checks", "run_all",
				fmt.Sprintf("check %s failed", outcome.Name), nil)
		}
	}
	return outcomes, nil
}

func (r *Runner) runOne(ctx context.Context, check config.Check) models.CheckOutcome {
	logger := r.logger.With(logging.String("check", check.Name))
	logger.Info("check started",
		logging.String("command", check.Command+" "+strings.Join(check.Args, " ")))

	start := time.Now()
	cmd := commandContext(ctx, check.Command, check.Args...) //nolint:gosec
	cmd.Dir = check.Dir
	output, err := cmd.CombinedOutput()
	elapsed := time.Since(start)

	outcome := models.CheckOutcome{
		Name:       check.Name,
		Passed:     err == nil,
		DurationMS: elapsed.Milliseconds(),
		Output:     strings.TrimSpace(string(output)),
	}
	if err != nil {
		if outcome.Output == "" {
			outcome.Output = err.Error()
		}
		logger.Warn("check failed", logging.Duration("elapsed", elapsed), logging.Error(err))
		return outcome
	}
	logger.Info("check passed", logging.Duration("elapsed", elapsed))
	return outcome
}

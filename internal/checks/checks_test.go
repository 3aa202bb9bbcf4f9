package checks

import (
	"context"
	"errors"
	"strings"
	"testing"

	"loom/internal/config"
	"loom/internal/faults"
	"loom/internal/logging"
)

func TestCheckBinariesReportsMissing(t *testing.T) {
	statuses := CheckBinaries([]Requirement{
		{Name: "shell", Command: "sh"},
		{Name: "ghost", Command: "definitely-not-a-real-binary"},
		{Name: "blank", Command: "  "},
	})
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	if !statuses[0].Available {
		t.Fatalf("expected sh to be available: %+v", statuses[0])
	}
	if statuses[1].Available {
		t.Fatal("expected missing binary to be unavailable")
	}
	if !strings.Contains(statuses[1].Detail, "not found") {
		t.Fatalf("unexpected detail: %q", statuses[1].Detail)
	}
	if statuses[2].Available || statuses[2].Detail != "command not configured" {
		t.Fatalf("unexpected blank status: %+v", statuses[2])
	}
}

func TestRequirementsIncludesConfiguredCommands(t *testing.T) {
	cfg := config.Default()
	cfg.Backend.Command = "loomd"
	cfg.Web.Command = "npm"
	cfg.TypeGen.Json2TSCmd = "npx json2ts"
	cfg.Checks = []config.Check{{Name: "vet", Command: "go", Args: []string{"vet", "./..."}}}

	reqs := Requirements(&cfg)
	names := make(map[string]string, len(reqs))
	for _, req := range reqs {
		names[req.Name] = req.Command
	}
	if names["backend"] != "loomd" {
		t.Fatalf("expected backend requirement, got %+v", reqs)
	}
	if names["json2ts"] != "npx" {
		t.Fatalf("expected json2ts requirement to use first field, got %q", names["json2ts"])
	}
	if names["vet"] != "go" {
		t.Fatalf("expected vet requirement, got %+v", reqs)
	}
}

func TestRunAllReportsOutcomesInOrder(t *testing.T) {
	runner := NewRunner(logging.NewNop())

	outcomes, err := runner.RunAll(context.Background(), []config.Check{
		{Name: "first", Command: "sh", Args: []string{"-c", "echo first ok"}},
		{Name: "second", Command: "sh", Args: []string{"-c", "echo second ok"}},
	})
	if err != nil {
		t.Fatalf("run all: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	if outcomes[0].Name != "first" || outcomes[1].Name != "second" {
		t.Fatalf("expected configured order, got %q, %q", outcomes[0].Name, outcomes[1].Name)
	}
	if !outcomes[0].Passed || !outcomes[1].Passed {
		t.Fatalf("expected both checks to pass: %+v", outcomes)
	}
	if outcomes[0].Output != "first ok" {
		t.Fatalf("unexpected output: %q", outcomes[0].Output)
	}
}

func TestRunAllSurfacesFailure(t *testing.T) {
	runner := NewRunner(logging.NewNop())

	outcomes, err := runner.RunAll(context.Background(), []config.Check{
		{Name: "pass", Command: "sh", Args: []string{"-c", "echo ok"}},
		{Name: "fail", Command: "sh", Args: []string{"-c", "echo broken >&2; exit 1"}},
	})
	if err == nil {
		t.Fatal("expected error when a check fails")
	}
	if !errors.Is(err, faults.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("expected outcomes for all checks, got %d", len(outcomes))
	}
	if outcomes[1].Passed {
		t.Fatal("expected failing check to be reported as failed")
	}
	if !strings.Contains(outcomes[1].Output, "broken") {
		t.Fatalf("expected captured stderr, got %q", outcomes[1].Output)
	}
}

func TestRunAllRequiresChecks(t *testing.T) {
	runner := NewRunner(logging.NewNop())

	_, err := runner.RunAll(context.Background(), nil)
	if !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected configuration marker, got %v", err)
	}
}

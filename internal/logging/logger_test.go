package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"loom/internal/logging"
)

func TestNewJSONWritesToFile(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "loom.log")

	logger, err := logging.New(logging.Options{
		Format:           "json",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("backend started", logging.String("bind", "127.0.0.1:7892"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for _, fragment := range []string{`"msg":"backend started"`, `"bind":"127.0.0.1:7892"`, `"level":"info"`} {
		if !strings.Contains(string(content), fragment) {
			t.Fatalf("expected %q in log output %q", fragment, content)
		}
	}
}

func TestConsoleFormatIncludesComponent(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "console.log")

	logger, err := logging.New(logging.Options{
		Format:           "console",
		Level:            "debug",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "typegen").Info("definitions written", logging.Int("models", 4))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "[typegen]") {
		t.Fatalf("expected component tag in %q", line)
	}
	if !strings.Contains(line, "models=4") {
		t.Fatalf("expected flattened attr in %q", line)
	}
	if !strings.Contains(line, "INF") {
		t.Fatalf("expected level tag in %q", line)
	}
}

func TestDebugLevelFiltersBelowThreshold(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "filtered.log")

	logger, err := logging.New(logging.Options{
		Format:           "console",
		Level:            "warn",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("should be dropped")
	logger.Warn("should be kept")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), "should be dropped") {
		t.Fatalf("info line should have been filtered: %q", content)
	}
	if !strings.Contains(string(content), "should be kept") {
		t.Fatalf("warn line missing: %q", content)
	}
}

func TestUnsupportedFormatRejected(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("nothing happens", logging.Error(os.ErrNotExist))
}

package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"loom/internal/config"
	"loom/internal/history"
	"loom/internal/logging"
	"loom/internal/models"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Server.Bind = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = 2
	return &cfg
}

func newTestStore(t *testing.T, cfg *config.Config) *history.Store {
	t.Helper()
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("open history store: %v", err)
	}
	return store
}

func TestDaemonServesStatus(t *testing.T) {
	cfg := newTestConfig(t)
	store := newTestStore(t, cfg)

	d, err := New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	defer d.Close()

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start daemon: %v", err)
	}

	resp, err := http.Get("http://" + d.Addr() + "/status")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var payload models.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.Status != models.StatusOK {
		t.Fatalf("unexpected status %q", payload.Status)
	}

	status := d.Status()
	if !status.Running {
		t.Fatal("expected running status")
	}
	if status.HistoryPath != store.Path() {
		t.Fatalf("unexpected history path %q", status.HistoryPath)
	}
}

func TestDaemonEnforcesSingleInstance(t *testing.T) {
	cfg := newTestConfig(t)
	store := newTestStore(t, cfg)

	first, err := New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	defer first.Close()
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("start first daemon: %v", err)
	}

	secondStore := newTestStore(t, cfg)
	defer secondStore.Close()
	secondCfg := *cfg
	secondCfg.Server.Bind = "127.0.0.1:0"
	second, err := New(&secondCfg, secondStore, logging.NewNop())
	if err != nil {
		t.Fatalf("new second daemon: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("expected second daemon start to fail while lock is held")
	}
}

func TestDaemonStopIsIdempotent(t *testing.T) {
	cfg := newTestConfig(t)
	store := newTestStore(t, cfg)

	d, err := New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start daemon: %v", err)
	}
	d.Stop()
	d.Stop()
	if err := d.Close(); err != nil {
		t.Fatalf("close daemon: %v", err)
	}

	if d.Status().Running {
		t.Fatal("expected daemon to report stopped")
	}
}

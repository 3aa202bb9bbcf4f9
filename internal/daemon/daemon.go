// Package daemon coordinates the backend API server, the run history
// store, and single-instance enforcement via a lock file.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"loom/internal/checks"
	"loom/internal/config"
	"loom/internal/history"
	"loom/internal/logging"
	"loom/internal/models"
	"loom/internal/server"
)

// Daemon owns the API server lifecycle and the daemon lock.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *history.Store
	api    *server.Server

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	startedAt time.Time
	cancel    context.CancelFunc
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *history.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon requires config and history store")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "loomd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	api, err := server.New(server.Options{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Registry: models.Registry(),
		Status:   d.Status,
	})
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock and brings up the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another loom daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.Start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		return fmt.Errorf("start api server: %w", err)
	}
	d.cancel = cancel
	d.startedAt = time.Now().UTC()
	d.running.Store(true)
	d.logger.Info("loom daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.api.Addr()))
	return nil
}

// Stop shuts down the API server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("loom daemon stopped")
}

// Close stops the daemon and releases the history store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr reports the API server's bound address.
func (d *Daemon) Addr() string {
	if d.api == nil {
		return ""
	}
	return d.api.Addr()
}

// Status returns a runtime snapshot for the status endpoint and CLI.
func (d *Daemon) Status() models.DaemonStatus {
	status := models.DaemonStatus{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Bind:         d.cfg.Server.Bind,
		TLS:          d.cfg.TLSEnabled(),
		LockPath:     d.lockPath,
		Dependencies: dependencyStatuses(d.cfg),
	}
	if d.store != nil {
		status.HistoryPath = d.store.Path()
	}
	if !d.startedAt.IsZero() {
		status.StartedAt = d.startedAt
	}
	return status
}

func dependencyStatuses(cfg *config.Config) []models.DependencyStatus {
	statuses := checks.CheckBinaries(checks.Requirements(cfg))
	out := make([]models.DependencyStatus, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, models.DependencyStatus{
			Name:      status.Name,
			Command:   status.Command,
			Optional:  status.Optional,
			Available: status.Available,
			Detail:    status.Detail,
		})
	}
	return out
}

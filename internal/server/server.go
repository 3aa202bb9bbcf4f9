package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"loom/internal/config"
	"loom/internal/history"
	"loom/internal/logging"
	"loom/internal/models"
	"loom/internal/schema"
)

// StatusFunc supplies the daemon status snapshot for GET /api/status.
type StatusFunc func() models.DaemonStatus

// Options wires the server to its collaborators.
type Options struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    *history.Store
	Registry *schema.Registry
	Status   StatusFunc
}

// Server is the backend HTTP API.
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *history.Store
	registry *schema.Registry
	status   StatusFunc

	listener net.Listener
	server   *http.Server
}

// New builds the server and its route table.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.New("server: config is required")
	}
	if opts.Registry == nil {
		return nil, errors.New("server: registry is required")
	}

	srv := &Server{
		cfg:      opts.Config,
		logger:   logging.NewComponentLogger(opts.Logger, "api-server"),
		store:    opts.Store,
		registry: opts.Registry,
		status:   opts.Status,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/status", srv.handleHealth)
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/history", srv.handleHistory)
	mux.HandleFunc("/api/typegen", srv.handleTypegen)

	srv.server = &http.Server{
		Handler:           srv.requestLog(srv.cors(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Handler exposes the fully wrapped route table.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start binds the configured address and serves until the context ends.
// TLS is used when both certificate and key are configured.
func (s *Server) Start(ctx context.Context) error {
	bind := strings.TrimSpace(s.cfg.Server.Bind)
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		var serveErr error
		if s.cfg.TLSEnabled() {
			serveErr = s.server.ServeTLS(listener, s.cfg.Server.TLSCert, s.cfg.Server.TLSKey)
		} else {
			serveErr = s.server.Serve(listener)
		}
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(serveErr))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.Bool("tls", s.cfg.TLSEnabled()))
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop drains in-flight requests within the configured shutdown timeout.
func (s *Server) Stop() {
	if s == nil || s.server == nil {
		return
	}
	timeout := time.Duration(s.cfg.Server.ShutdownTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

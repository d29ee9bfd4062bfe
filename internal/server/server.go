// Package server assembles the gateway, admin API, and health endpoints into
// one HTTP service.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/txn2/mcp-agent-gate/pkg/admin"
	"github.com/txn2/mcp-agent-gate/pkg/gateway"
	"github.com/txn2/mcp-agent-gate/pkg/health"
)

// Build information, set at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

const shutdownTimeout = 10 * time.Second

// Server hosts the admin surface for one gateway instance.
type Server struct {
	gw      *gateway.Gateway
	checker *health.Checker
	httpSrv *http.Server
	logger  *slog.Logger
}

// Config configures a Server.
type Config struct {
	// Address is the HTTP listen address.
	Address string

	// AdminKeys maps API keys to admin users. Empty disables the admin
	// endpoints' authentication entirely; only do that behind a trusted
	// proxy.
	AdminKeys map[string]admin.User

	// Logger is the structured logger. Nil falls back to slog.Default.
	Logger *slog.Logger
}

// New assembles a server around the given gateway.
func New(gw *gateway.Gateway, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	checker := health.NewChecker()

	var authMiddle func(http.Handler) http.Handler
	if len(cfg.AdminKeys) > 0 {
		authMiddle = admin.RequireAdmin(&admin.APIKeyAuthenticator{Keys: cfg.AdminKeys})
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/admin/", admin.NewHandler(gw, authMiddle))
	mux.HandleFunc("GET /healthz", checker.LivenessHandler())
	mux.HandleFunc("GET /readyz", checker.ReadinessHandler())

	return &Server{
		gw:      gw,
		checker: checker,
		httpSrv: &http.Server{
			Addr:              cfg.Address,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Run starts the gateway's background maintenance and serves HTTP until ctx
// is cancelled, then drains and shuts everything down.
func (s *Server) Run(ctx context.Context) error {
	s.gw.Start()
	s.checker.SetReady()
	s.logger.Info("agent gate listening",
		"address", s.httpSrv.Addr, "version", Version)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.checker.SetDraining()
		_ = s.gw.Close()
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	s.checker.SetDraining()
	s.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		_ = s.gw.Close()
		return fmt.Errorf("shutdown: %w", err)
	}
	return s.gw.Close()
}

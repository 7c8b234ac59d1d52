// Package server exposes the reconciliation engine over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/exim-ops/ledgerrecon/internal/config"
	"github.com/exim-ops/ledgerrecon/internal/importer"
	"github.com/exim-ops/ledgerrecon/internal/ledger"
	"github.com/exim-ops/ledgerrecon/internal/logger"
	"github.com/exim-ops/ledgerrecon/internal/storage"
)

// Deps are the long-lived resources a Server hands to its handlers.
type Deps struct {
	Engine        *ledger.Engine
	Parsers       *importer.Registry
	Archiver      storage.Archiver
	ArchivePrefix string
	Config        config.ServerConfig
	Logger        zerolog.Logger
	Version       string
}

// Server holds the HTTP routes for ledger reconciliation.
type Server struct {
	deps Deps
}

// New creates a Server. Nil parsers or archiver fall back to the defaults.
func New(deps Deps) *Server {
	if deps.Parsers == nil {
		deps.Parsers = importer.DefaultRegistry()
	}
	if deps.Archiver == nil {
		deps.Archiver = storage.NopArchiver{}
	}
	if deps.Engine == nil {
		deps.Engine = ledger.NewEngine(ledger.DefaultPolicy())
	}
	return &Server{deps: deps}
}

// Router builds the gin engine with middleware and routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(logger.RequestID(), logger.Gin(s.deps.Logger), gin.CustomRecovery(s.recover))

	r.GET("/health", s.Health)

	v1 := r.Group("/api/v1")
	v1.POST("/ledger/reconcile", s.Reconcile)
	return r
}

// HTTPServer wraps the router in an http.Server with the configured timeouts.
func (s *Server) HTTPServer(addr string) *http.Server {
	if addr == "" {
		addr = s.deps.Config.Addr
	}
	return &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.deps.Config.RequestTimeout,
		WriteTimeout:      s.deps.Config.RequestTimeout,
		IdleTimeout:       2 * s.deps.Config.RequestTimeout,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := s.HTTPServer(addr)
	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.Info().Str("addr", srv.Addr).Str("version", s.deps.Version).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.deps.Logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.deps.Logger.Info().Msg("server exited gracefully")
	return nil
}

// HealthStatus is the payload of GET /health.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Health reports liveness.
func (s *Server) Health(c *gin.Context) {
	success(c, http.StatusOK, HealthStatus{Status: "ok", Version: s.deps.Version})
}

func (s *Server) recover(c *gin.Context, err any) {
	log := logger.FromGin(c)
	log.Error().Interface("panic", err).Msg("panic recovered")
	fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
}

// Package server exposes the recitation engine over HTTP: session lifecycle
// endpoints, a WebSocket live-ingest stream, stored report retrieval, health
// probes, and the Prometheus metrics endpoint.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/mkhalidi/rattil/internal/health"
	"github.com/mkhalidi/rattil/internal/observe"
	"github.com/mkhalidi/rattil/internal/session"
	"github.com/mkhalidi/rattil/internal/store"
)

// shutdownTimeout bounds graceful shutdown once the run context is cancelled.
const shutdownTimeout = 10 * time.Second

// Server is the Rattil HTTP server.
type Server struct {
	manager *session.Manager
	store   store.Store
	metrics *observe.Metrics
	handler http.Handler
	addr    string
}

// Config holds all dependencies for a [Server].
type Config struct {
	// ListenAddr is the TCP address to listen on. Defaults to ":8080".
	ListenAddr string

	// Manager runs the recitation sessions. Must not be nil.
	Manager *session.Manager

	// Store serves stored report lookups. Must not be nil.
	Store store.Store

	// Health serves the liveness and readiness probes. Defaults to a
	// handler with no readiness checks.
	Health *health.Handler

	// Metrics records HTTP instrumentation. Defaults to
	// observe.DefaultMetrics().
	Metrics *observe.Metrics
}

// New creates a [Server] with all routes registered.
func New(cfg Config) *Server {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.Health == nil {
		cfg.Health = health.New()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.DefaultMetrics()
	}

	s := &Server{
		manager: cfg.Manager,
		store:   cfg.Store,
		metrics: cfg.Metrics,
		addr:    cfg.ListenAddr,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", s.handleStartSession)
	mux.HandleFunc("GET /sessions", s.handleListSessions)
	mux.HandleFunc("GET /sessions/{id}", s.handleSessionProgress)
	mux.HandleFunc("POST /sessions/{id}/chunks", s.handlePushChunk)
	mux.HandleFunc("POST /sessions/{id}/reset", s.handleResetSession)
	mux.HandleFunc("POST /sessions/{id}/finish", s.handleFinishSession)
	mux.HandleFunc("GET /sessions/{id}/live", s.handleLive)
	mux.HandleFunc("GET /reports", s.handleListReports)
	mux.HandleFunc("GET /reports/{id}", s.handleGetReport)
	mux.Handle("GET /metrics", promhttp.Handler())
	cfg.Health.Register(mux)

	s.handler = observe.Middleware(cfg.Metrics)(mux)
	return s
}

// Handler returns the server's root handler, middleware included. Exposed for
// httptest-based tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http server listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/nums-tui/internal/domain"
	"github.com/jeranaias/nums-tui/internal/export"
	"github.com/jeranaias/nums-tui/internal/store"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = "127.0.0.1:8787"

	// DefaultRequestTimeout bounds each request, backend calls included.
	DefaultRequestTimeout = 30 * time.Second

	// shutdownTimeout is how long in-flight requests get to finish.
	shutdownTimeout = 5 * time.Second

	// staleHeader carries the snapshot time when cached data is served.
	staleHeader = "X-Nums-Stale-Since"
)

// ============================================================================
// SERVER
// ============================================================================

// Server serves plant data from a store.
type Server struct {
	store    *store.Store
	logger   *slog.Logger
	registry *prometheus.Registry
	limiter  *RateLimiter
	timeout  time.Duration
	now      func() time.Time

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRegistry serves metrics from reg and registers the HTTP collectors
// on it. Backend collectors registered by the caller appear as well.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// WithRateLimiter replaces the default per-IP limiter. nil disables it.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(s *Server) { s.limiter = rl }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// WithClock sets the time source used for export file names.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates a server over st.
func New(st *store.Store, opts ...Option) *Server {
	s := &Server{
		store:   st,
		logger:  slog.Default(),
		limiter: DefaultRateLimiter(),
		timeout: DefaultRequestTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.logger = s.logger.With("component", "server")
	return s
}

// Handler builds the router with its middleware chain.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(s.logger, newHTTPMetrics(s.registry)))
	r.Use(middleware.Recoverer)
	r.Use(SecurityHeadersMiddleware())
	if s.limiter != nil {
		r.Use(RateLimitMiddleware(s.limiter))
	}
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Get("/api/scoreboard", s.handleScoreboard)
	r.Route("/export", func(r chi.Router) {
		r.Get("/all.xlsx", s.handleWorkbook)
		r.Get("/{dataset}.csv", s.handleCSV)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return r
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return fmt.Errorf("serve %s: %w", addr, err)
	}
}

// ============================================================================
// HANDLERS
// ============================================================================

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleScoreboard(w http.ResponseWriter, r *http.Request) {
	ov, err := s.store.Overview(r.Context())
	if !s.usable(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, ov.Scoreboard)
}

func (s *Server) handleCSV(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "dataset")
	var (
		d   export.Dataset
		err error
	)
	switch name {
	case export.DatasetCoalYards:
		var yards []domain.CoalYard
		yards, err = s.store.CoalYards(r.Context())
		d = export.CoalYards(yards)
	case export.DatasetChemicals:
		var chems []domain.Chemical
		chems, err = s.store.Chemicals(r.Context())
		d = export.Chemicals(chems)
	case export.DatasetPower:
		var readings []domain.PowerReading
		readings, err = s.store.PowerReadings(r.Context())
		d = export.Power(readings)
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown dataset %q", name))
		return
	}
	if !s.usable(w, err) {
		return
	}
	s.writeExport(w, export.NewCSVExporter(), d.Name, d)
}

func (s *Server) handleWorkbook(w http.ResponseWriter, r *http.Request) {
	var (
		yards     []domain.CoalYard
		chemicals []domain.Chemical
		power     []domain.PowerReading

		mu       sync.Mutex
		staleErr error
	)
	// Stale results are kept aside so they never cancel the other loaders.
	keep := func(err error) error {
		if store.IsStale(err) {
			mu.Lock()
			staleErr = err
			mu.Unlock()
			return nil
		}
		return err
	}
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		yards, err = s.store.CoalYards(ctx)
		return keep(err)
	})
	g.Go(func() error {
		var err error
		chemicals, err = s.store.Chemicals(ctx)
		return keep(err)
	})
	g.Go(func() error {
		var err error
		power, err = s.store.PowerReadings(ctx)
		return keep(err)
	})
	if !s.usable(w, g.Wait()) {
		return
	}
	if staleErr != nil {
		s.usable(w, staleErr)
	}

	var sheets []export.Dataset
	for _, d := range export.Datasets(yards, chemicals, power) {
		if !d.Empty() {
			sheets = append(sheets, d)
		}
	}
	if len(sheets) == 0 {
		writeError(w, http.StatusNotFound, "no data to export")
		return
	}
	s.writeExport(w, export.NewXLSXExporter(), export.WorkbookName, sheets...)
}

// usable writes an error response for hard failures and reports whether
// the handler should continue. Stale data is served with a header noting
// when it was fetched.
func (s *Server) usable(w http.ResponseWriter, err error) bool {
	if err == nil {
		return true
	}
	var stale *store.StaleError
	if errors.As(err, &stale) {
		w.Header().Set(staleHeader, stale.FetchedAt.UTC().Format(time.RFC3339))
		return true
	}
	s.logger.Error("backend request failed", "error", err)
	writeError(w, http.StatusBadGateway, "backend unavailable")
	return false
}

func (s *Server) writeExport(w http.ResponseWriter, e export.Exporter, name string, datasets ...export.Dataset) {
	content, err := e.Export(datasets...)
	if err != nil {
		s.logger.Error("export failed", "dataset", name, "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	filename := export.FileName(name, e.FileExtension(), s.now())
	w.Header().Set("Content-Type", e.MimeType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// ============================================================================
// HELPERS
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: status})
}

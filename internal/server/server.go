// Package server exposes the HTTP JSON API: session auth, receipt scanning,
// record queries, XLSX export, and scan-job status.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/receiptlens/receiptlens/constants"
	"github.com/receiptlens/receiptlens/internal/async"
	"github.com/receiptlens/receiptlens/internal/auth"
	"github.com/receiptlens/receiptlens/internal/export"
	"github.com/receiptlens/receiptlens/internal/pipeline"
	"github.com/receiptlens/receiptlens/internal/repository"
)

// Config wires the server's collaborators. Queue is optional; without it the
// scan endpoint only answers synchronously.
type Config struct {
	Auth      *auth.Service
	Processor *pipeline.Processor
	Queue     async.Queue
	Records   repository.RecordRepository
	Jobs      repository.JobRepository
	Export    *export.Service
	DB        *repository.DB
	Logger    *slog.Logger
}

// Server handles HTTP requests for the receipt API.
type Server struct {
	auth      *auth.Service
	processor *pipeline.Processor
	queue     async.Queue
	records   repository.RecordRepository
	jobs      repository.JobRepository
	export    *export.Service
	db        *repository.DB
	logger    *slog.Logger
	mux       *http.ServeMux

	limiter      *ipLimiter // general API budget
	loginLimiter *ipLimiter // tighter budget for credential endpoints
}

// NewServer creates a new Server with a default mux.
func NewServer(cfg Config) *Server {
	return NewServerWithMux(cfg, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing.
func NewServerWithMux(cfg Config, mux *http.ServeMux) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		auth:         cfg.Auth,
		processor:    cfg.Processor,
		queue:        cfg.Queue,
		records:      cfg.Records,
		jobs:         cfg.Jobs,
		export:       cfg.Export,
		db:           cfg.DB,
		logger:       logger,
		mux:          mux,
		limiter:      newIPLimiter(rate.Limit(20), 40),
		loginLimiter: newIPLimiter(rate.Limit(1), 5),
	}
	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes on the server's mux.
// Literal segments (export) outrank wildcards ({id}) under the 1.22 mux.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /api/auth/register", s.rateLimit(s.loginLimiter, s.handleRegister))
	s.mux.HandleFunc("POST /api/auth/login", s.rateLimit(s.loginLimiter, s.handleLogin))
	s.mux.HandleFunc("POST /api/auth/logout", s.rateLimit(s.limiter, s.requireAuth(s.handleLogout)))
	s.mux.HandleFunc("GET /api/auth/verify", s.rateLimit(s.limiter, s.requireAuth(s.handleVerify)))
	s.mux.HandleFunc("POST /api/auth/reset", s.rateLimit(s.loginLimiter, s.handleResetPassword))

	s.mux.HandleFunc("POST /api/receipts/scan", s.rateLimit(s.limiter, s.requireAuth(s.handleScan)))
	s.mux.HandleFunc("GET /api/receipts/export", s.rateLimit(s.limiter, s.requireAuth(s.handleExport)))
	s.mux.HandleFunc("GET /api/receipts/{id}", s.rateLimit(s.limiter, s.requireAuth(s.handleGetRecord)))
	s.mux.HandleFunc("GET /api/receipts", s.rateLimit(s.limiter, s.requireAuth(s.handleListRecords)))

	s.mux.HandleFunc("GET /api/jobs/{id}", s.rateLimit(s.limiter, s.requireAuth(s.handleGetJob)))

	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns the full middleware chain. Use this, not the bare mux,
// when mounting the server.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// ServeHTTP implements http.Handler for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Handler().ServeHTTP(w, r)
}

// ListenAndServe runs the server until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if s.db != nil {
		if err := s.db.HealthCheck(r.Context(), 3*time.Second); err != nil {
			s.logger.Error("health check failed", "error", err)
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, map[string]string{
		"status":  status,
		"version": constants.Version,
	})
}

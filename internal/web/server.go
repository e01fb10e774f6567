// Package web provides the HTTP API for collection conversions.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/tcgmatch/internal/config"
	"github.com/JonMunkholm/tcgmatch/internal/core"
	"github.com/JonMunkholm/tcgmatch/internal/metrics"
	"github.com/JonMunkholm/tcgmatch/internal/web/middleware"
)

// Pinger reports whether the catalog is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server for the conversion API.
type Server struct {
	service *core.Service
	cfg     *config.Config
	metrics *metrics.Metrics
	health  Pinger
	router  *chi.Mux
	server  *http.Server

	// stop ends the rate limiter cleanup loops.
	stop context.CancelFunc
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records request metrics and serves them on /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithHealthCheck makes /healthz ping p.
func WithHealthCheck(p Pinger) Option {
	return func(s *Server) { s.health = p }
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stop = cancel

	s.setupMiddleware()
	s.setupRoutes(ctx)
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	var rec middleware.RequestRecorder
	if s.metrics != nil {
		rec = s.metrics
	}

	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger(rec))
	s.router.Use(chimw.Recoverer)
	s.router.Use(middleware.SecurityHeaders(s.cfg.Security.EnableCSP))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes(ctx context.Context) {
	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	var onLimit func()
	if s.metrics != nil {
		onLimit = s.metrics.RateLimited
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(s.cfg.Security))
		if s.cfg.Rate.Enabled {
			r.Use(middleware.NewRateLimiter(ctx, s.cfg.Rate.RequestsPerMinute, onLimit).Handler)
		}

		// Conversions carry their own deadline (CONVERT_TIMEOUT).
		r.Group(func(r chi.Router) {
			if s.cfg.Rate.Enabled {
				r.Use(middleware.NewRateLimiter(ctx, s.cfg.Rate.ConvertLimit, onLimit).Handler)
			}
			r.Post("/convert", s.handleConvert)
		})

		r.Group(func(r chi.Router) {
			if s.cfg.Server.RequestTimeout > 0 {
				r.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
			}
			r.Get("/convert/{id}", s.handleConversion)
			r.Get("/convert/{id}/output", s.handleOutput)
			r.Get("/convert/{id}/failures", s.handleFailures)
			r.Get("/status", s.handleStatus)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stop()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

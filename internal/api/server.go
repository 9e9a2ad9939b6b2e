// Package api exposes the analysis service over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"roulette-lab/internal/analysis"
	"roulette-lab/internal/classifier"
	"roulette-lab/internal/domain"
	"roulette-lab/internal/observability"
)

// Service is the analysis surface the handlers depend on.
type Service interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error)
	Snapshot(ctx context.Context, req analysis.Request) (*analysis.SnapshotResult, error)
	Stats(ctx context.Context, req analysis.Request, policy classifier.Policy, persist bool) (*domain.StrategyStatsSnapshot, error)
	Ingest(ctx context.Context, rouletteID string, spins []*domain.Spin) error
	Strategies() []domain.StrategyConfig
	Roulettes(ctx context.Context) ([]string, error)
}

// Config holds server configuration
type Config struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	CORSOrigins     []string
	DefaultAttempts int

	Service        Service
	Metrics        *observability.Metrics // optional
	MetricsHandler http.Handler           // optional, defaults to the global registry
	Log            zerolog.Logger
}

// Server represents the HTTP server
type Server struct {
	router          *chi.Mux
	server          *http.Server
	log             zerolog.Logger
	svc             Service
	metrics         *observability.Metrics
	defaultAttempts int
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	if cfg.DefaultAttempts == 0 {
		cfg.DefaultAttempts = domain.CachedAttempts
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	if cfg.MetricsHandler == nil {
		cfg.MetricsHandler = observability.Handler()
	}

	s := &Server{
		router:          chi.NewRouter(),
		log:             cfg.Log.With().Str("component", "api").Logger(),
		svc:             cfg.Service,
		metrics:         cfg.Metrics,
		defaultAttempts: cfg.DefaultAttempts,
	}

	s.setupMiddleware(cfg.CORSOrigins)
	s.setupRoutes(cfg.MetricsHandler)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(origins []string) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(metricsHandler http.Handler) {
	s.router.Get("/health", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", metricsHandler)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/strategies", s.handleStrategies)
		r.Get("/roulettes", s.handleRoulettes)

		r.Route("/roulettes/{rouletteID}", func(r chi.Router) {
			r.Post("/spins", s.handleIngest)
			r.Get("/analysis", s.handleAnalysis)
			r.Get("/snapshot", s.handleSnapshot)
			r.Get("/stats", s.handleStats)
		})
	})
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests and records request metrics.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		if s.metrics != nil {
			s.metrics.RecordHTTP(route, status, time.Since(start).Seconds())
		}

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

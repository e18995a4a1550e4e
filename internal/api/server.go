// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	handler "github.com/newthinker/trendpulse/internal/api/handler/api"
	"github.com/newthinker/trendpulse/internal/api/middleware"
	"github.com/newthinker/trendpulse/internal/api/response"
	"github.com/newthinker/trendpulse/internal/app"
	"github.com/newthinker/trendpulse/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the trendpulse HTTP server
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	handler    http.Handler
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	APIKey       string
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MetricsPath  string // empty disables /metrics
}

// Dependencies holds the services the routes are served from.
type Dependencies struct {
	App *app.App
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.App == nil {
		return nil, fmt.Errorf("app is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	// summaries wait on the LLM
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 60 * time.Second
	}

	mux := http.NewServeMux()
	s := &Server{
		logger: logger,
		mux:    mux,
	}

	s.setupRoutes(cfg, deps)

	reg := deps.App.Metrics()
	var h http.Handler = mux
	h = metrics.HTTPMiddleware(reg)(h)
	h = metrics.LoggingMiddleware(logger)(h)
	h = cors.Handler(corsOptions(cfg.CORSOrigins))(h)
	s.handler = h

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      h,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}
	return s, nil
}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.APIKeyHeader, metrics.RequestIDHeader},
		ExposedHeaders: []string{metrics.RequestIDHeader},
		MaxAge:         300,
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) {
	a := deps.App

	trends := handler.NewTrendsHandler(a.Store(), a.Aliases())
	s.mux.HandleFunc("GET /api/trends/rising", trends.Rising)
	s.mux.HandleFunc("GET /api/trends/platform", trends.Platform)
	s.mux.HandleFunc("GET /api/trends", trends.List)
	s.mux.HandleFunc("GET /api/contents/rising", trends.Contents)

	videos := handler.NewVideosHandler(a.Catalog())
	s.mux.HandleFunc("GET /api/videos", videos.List)
	s.mux.HandleFunc("GET /api/youtube/list", videos.List)

	analysis := handler.NewAnalysisHandler(a.Analyzer(), a.News(), s.logger)
	s.mux.HandleFunc("GET /api/analysis", analysis.Analysis)
	s.mux.HandleFunc("GET /api/news", analysis.News)
	s.mux.HandleFunc("GET /api/summary", analysis.Summary)
	s.mux.HandleFunc("POST /api/generate", analysis.Generate)

	s.mux.HandleFunc("GET /api/health", s.handleHealth(a))

	// Admin routes exist only behind an operator key
	if cfg.APIKey == "" {
		s.logger.Warn("server.api_key not set, admin routes disabled")
	} else {
		auth := middleware.APIKeyAuth(cfg.APIKey)
		admin := handler.NewAdminHandler(a, a.Analyzer().Cache())
		s.mux.Handle("POST /api/admin/reload", auth(http.HandlerFunc(admin.Reload)))
		s.mux.Handle("DELETE /api/admin/cache", auth(http.HandlerFunc(admin.Cache)))
	}

	if cfg.MetricsPath != "" {
		s.mux.Handle("GET "+cfg.MetricsPath, promhttp.HandlerFor(a.Metrics(), promhttp.HandlerOpts{}))
	}
}

// ServeHTTP lets tests drive the full middleware chain.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, a.Status())
	}
}

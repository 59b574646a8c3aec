package server

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"slices"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"litegpt/config"
	"litegpt/internal/core"
)

// Server wraps the Echo server
type Server struct {
	echo    *echo.Echo
	handler *Handler
}

// Config holds server configuration options
type Config struct {
	BodySizeLimit      string                   // Max request body size, e.g. "1M" (default: config.DefaultBodySizeLimit)
	CORSAllowedOrigins []string                 // Origins allowed by CORS (default: all)
	MetricsEnabled     bool                     // Whether to expose Prometheus metrics endpoint
	MetricsEndpoint    string                   // HTTP path for metrics endpoint (default: /metrics)
	MetricsGatherer    prometheus.Gatherer      // Source of exposed metrics (default: prometheus.DefaultGatherer)
	Readiness          core.AvailabilityChecker // Optional: backend probe behind /health/ready
	Logger             *slog.Logger
}

// New creates a new HTTP server
func New(service ChatService, cfg *Config) *Server {
	if cfg == nil {
		cfg = &Config{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	handler := NewHandler(service, cfg.Readiness, logger)

	// Global middleware stack (order matters)
	e.Use(RequestIDMiddleware())
	e.Use(RequestLoggerMiddleware(logger))
	e.Use(middleware.Recover())

	bodySizeLimit := config.DefaultBodySizeLimit
	if cfg.BodySizeLimit != "" {
		bodySizeLimit = cfg.BodySizeLimit
	}
	e.Use(middleware.BodyLimit(bodySizeLimit))

	allowOrigins := cfg.CORSAllowedOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"*"}
	}
	// Credentials are allowed; "*" echoes the caller's Origin.
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowCredentials: true,

		UnsafeWildcardOriginWithAllowCredentials: slices.Contains(allowOrigins, "*"),
	}))

	// Public routes
	e.GET("/health", handler.Health)
	e.GET("/health/ready", handler.Ready)
	if cfg.MetricsEnabled {
		metricsPath := "/metrics"
		if cfg.MetricsEndpoint != "" {
			// Normalize path to prevent traversal attacks
			metricsPath = path.Clean(cfg.MetricsEndpoint)
		}
		gatherer := cfg.MetricsGatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		e.GET(metricsPath, echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// API routes
	e.POST("/chat", handler.Chat)

	return &Server{
		echo:    e,
		handler: handler,
	}
}

// Start starts the HTTP server on the given address
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP implements the http.Handler interface, allowing Server to be used with httptest
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Package app provides the main application struct for centralized dependency management
// and lifecycle control of the LiteGPT server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"litegpt/config"
	"litegpt/internal/chat"
	"litegpt/internal/core"
	"litegpt/internal/observability"
	"litegpt/internal/providers/ollama"
	"litegpt/internal/server"
)

// App represents the main application with all its dependencies.
// It provides centralized lifecycle management for all components.
type App struct {
	config   *config.Config
	logger   *slog.Logger
	provider *ollama.Provider
	chat     *chat.Service
	registry *prometheus.Registry
	server   *server.Server

	shutdownMu sync.Mutex
	shutdown   bool
}

// Config holds the configuration options for creating an App.
type Config struct {
	// AppConfig is the loaded application configuration.
	AppConfig *config.Config

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// HTTPClient overrides the outbound client used for the backend.
	HTTPClient *http.Client
}

// New creates a new App with all dependencies initialized.
// The caller must call Shutdown to release resources.
func New(cfg Config) (*App, error) {
	if cfg.AppConfig == nil {
		return nil, fmt.Errorf("app config is required")
	}
	appCfg := cfg.AppConfig

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	app := &App{
		config: appCfg,
		logger: logger,
	}

	// Metrics live on a private registry, never the global one.
	var chatOpts []chat.Option
	providerCfg := ollama.Config{
		BaseURL: appCfg.Backend.BaseURL,
		Model:   appCfg.Backend.Model,
		Timeout: appCfg.Backend.TimeoutDuration(),
		Logger:  logger,
	}
	if appCfg.Metrics.Enabled {
		app.registry = observability.NewRegistry()
		metrics := observability.NewMetrics(app.registry)
		providerCfg.Hooks = metrics.Hooks()
		chatOpts = append(chatOpts, chat.WithOutcomeRecorder(metrics))
	}

	if cfg.HTTPClient != nil {
		app.provider = ollama.NewWithHTTPClient(cfg.HTTPClient, providerCfg)
	} else {
		app.provider = ollama.New(providerCfg)
	}

	chatOpts = append(chatOpts, chat.WithLogger(logger))
	svc, err := chat.NewService(app.provider, generationOptions(appCfg.Generation), chatOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat service: %w", err)
	}
	app.chat = svc

	serverCfg := &server.Config{
		BodySizeLimit:      appCfg.Server.BodySizeLimit,
		CORSAllowedOrigins: appCfg.Server.CORSAllowedOrigins,
		MetricsEnabled:     appCfg.Metrics.Enabled,
		MetricsEndpoint:    appCfg.Metrics.Endpoint,
		Readiness:          app.provider,
		Logger:             logger,
	}
	if app.registry != nil {
		serverCfg.MetricsGatherer = app.registry
	}
	app.server = server.New(svc, serverCfg)

	app.logStartupInfo()

	return app, nil
}

// Chat returns the request pipeline, for callers that bypass HTTP.
func (a *App) Chat() *chat.Service {
	return a.chat
}

// Handler returns the HTTP handler serving the gateway routes.
func (a *App) Handler() http.Handler {
	return a.server
}

// Addr returns the listen address derived from the configured port.
func (a *App) Addr() string {
	return ":" + a.config.Server.Port
}

// Start starts the HTTP server on the given address.
// This is a blocking call that returns when the server stops.
func (a *App) Start(addr string) error {
	if a.server == nil {
		return fmt.Errorf("server is not initialized")
	}
	a.logger.Info("starting server", "address", addr)
	if err := a.server.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			a.logger.Info("server stopped gracefully")
			return nil
		}
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server, honoring ctx for in-flight requests.
// Shutdown is idempotent; after the first call, subsequent calls are no-ops.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownMu.Lock()
	if a.shutdown {
		a.shutdownMu.Unlock()
		return nil
	}
	a.shutdown = true
	a.shutdownMu.Unlock()

	a.logger.Info("shutting down application...")

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Error("server shutdown error", "error", err)
			return fmt.Errorf("server shutdown: %w", err)
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}

// logStartupInfo logs the application configuration on startup.
func (a *App) logStartupInfo() {
	cfg := a.config

	a.logger.Info("generation backend configured",
		"base_url", cfg.Backend.BaseURL,
		"model", a.provider.Model(),
		"timeout", cfg.Backend.TimeoutDuration(),
	)
	a.logger.Info("generation options",
		"temperature", cfg.Generation.Temperature,
		"top_p", cfg.Generation.TopP,
		"max_tokens", cfg.Generation.MaxTokens,
	)

	if cfg.Metrics.Enabled {
		a.logger.Info("prometheus metrics enabled", "endpoint", cfg.Metrics.Endpoint)
	} else {
		a.logger.Info("prometheus metrics disabled")
	}

	a.logger.Info("cors configured", "allowed_origins", cfg.Server.CORSAllowedOrigins)
}

func generationOptions(g config.GenerationConfig) core.GenerationOptions {
	return core.GenerationOptions{
		Temperature: g.Temperature,
		TopP:        g.TopP,
		MaxTokens:   g.MaxTokens,
	}
}

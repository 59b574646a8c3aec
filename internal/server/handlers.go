// Package server provides HTTP handlers and server setup for the LiteGPT gateway.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"litegpt/internal/core"
)

// ChatService answers a single chat message.
type ChatService interface {
	Reply(ctx context.Context, message string) (*core.ChatResponse, error)
}

// Handler holds the HTTP handlers
type Handler struct {
	service   ChatService
	readiness core.AvailabilityChecker
	logger    *slog.Logger
}

// NewHandler creates a new handler. readiness may be nil, in which case
// /health/ready always reports ready.
func NewHandler(service ChatService, readiness core.AvailabilityChecker, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service:   service,
		readiness: readiness,
		logger:    logger,
	}
}

// Chat handles POST /chat
func (h *Handler) Chat(c echo.Context) error {
	var req core.ChatRequest
	if err := c.Bind(&req); err != nil {
		return h.handleError(c, core.NewInvalidRequestError("invalid request body", err))
	}

	resp, err := h.service.Reply(c.Request().Context(), req.Message)
	if err != nil {
		return h.handleError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /health/ready
func (h *Handler) Ready(c echo.Context) error {
	if h.readiness == nil {
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	}
	if err := h.readiness.CheckAvailability(c.Request().Context()); err != nil {
		h.logger.Warn("readiness check failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

// handleError converts gateway errors to appropriate HTTP responses
func (h *Handler) handleError(c echo.Context, err error) error {
	var gatewayErr *core.GatewayError
	if errors.As(err, &gatewayErr) {
		return c.JSON(gatewayErr.HTTPStatusCode(), gatewayErr.ToJSON())
	}

	h.logger.Error("unexpected error", "error", err, "request_id", core.GetRequestID(c.Request().Context()))

	// Fallback for unexpected errors
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"error": map[string]interface{}{
			"type":    "internal_error",
			"message": "an unexpected error occurred",
		},
	})
}

package server

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"litegpt/internal/core"
)

// RequestIDMiddleware reuses the caller's X-Request-ID or generates one, echoes
// it on the response and stores it in the request context.
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			requestID := req.Header.Get(core.RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set(core.RequestIDHeader, requestID)
			c.SetRequest(req.WithContext(core.WithRequestID(req.Context(), requestID)))
			return next(c)
		}
	}
}

// RequestLoggerMiddleware logs one line per request through logger.
func RequestLoggerMiddleware(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				logger.Error("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.Info("request", attrs...)
			return nil
		},
	})
}

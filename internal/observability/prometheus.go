// Package observability exposes Prometheus metrics for backend traffic and
// chat request outcomes.
package observability

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"litegpt/internal/chat"
	"litegpt/internal/core"
	"litegpt/internal/llmclient"
)

const namespace = "litegpt"

// Metrics holds the collectors registered by NewMetrics.
type Metrics struct {
	backendRequests *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	backendInFlight *prometheus.GaugeVec
	chatOutcomes    *prometheus.CounterVec
}

// NewRegistry returns a registry preloaded with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewMetrics registers the LiteGPT collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		backendRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Generation backend requests by result.",
		}, []string{"backend", "model", "endpoint", "status_code", "result"}),
		backendDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Generation backend request latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}, []string{"backend", "model", "endpoint"}),
		backendInFlight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "backend_requests_in_flight",
			Help:      "Generation backend requests currently outstanding.",
		}, []string{"backend", "endpoint"}),
		chatOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Chat requests by terminal outcome.",
		}, []string{"outcome"}),
	}
}

// Hooks returns llmclient hooks feeding the backend collectors.
func (m *Metrics) Hooks() llmclient.Hooks {
	return llmclient.Hooks{
		OnRequestStart: func(ctx context.Context, info llmclient.RequestInfo) context.Context {
			m.backendInFlight.WithLabelValues(info.Backend, info.Endpoint).Inc()
			return ctx
		},
		OnRequestEnd: func(_ context.Context, info llmclient.ResponseInfo) {
			m.backendInFlight.WithLabelValues(info.Backend, info.Endpoint).Dec()
			m.backendDuration.WithLabelValues(info.Backend, info.Model, info.Endpoint).Observe(info.Duration.Seconds())
			m.backendRequests.WithLabelValues(
				info.Backend,
				info.Model,
				info.Endpoint,
				strconv.Itoa(info.StatusCode),
				resultLabel(info.Error),
			).Inc()
		},
	}
}

// RecordOutcome implements chat.OutcomeRecorder.
func (m *Metrics) RecordOutcome(outcome chat.Outcome) {
	m.chatOutcomes.WithLabelValues(string(outcome)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case core.IsErrorType(err, core.ErrorTypeBackendUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

// Package chat implements the per-request pipeline: validate the message,
// answer introductions locally, otherwise prompt the generation backend and
// sanitize what it returns.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"litegpt/internal/core"
	"litegpt/internal/guardrails"
)

// Outcome names the terminal state of a single chat request.
type Outcome string

const (
	OutcomeShortCircuit       Outcome = "short_circuit"
	OutcomeGenerated          Outcome = "generated"
	OutcomeEmptyInput         Outcome = "empty_input"
	OutcomeBackendError       Outcome = "backend_error"
	OutcomeBackendUnavailable Outcome = "backend_unavailable"
	OutcomeInternalError      Outcome = "internal_error"
)

const greetingTemplate = "Nice to meet you, %s! How can I help you?"

// OutcomeRecorder observes how each request ended.
type OutcomeRecorder interface {
	RecordOutcome(outcome Outcome)
}

// Service answers one chat message at a time. It holds no per-request state
// and is safe for concurrent use.
type Service struct {
	generator core.Generator
	options   core.GenerationOptions
	preamble  string
	logger    *slog.Logger
	recorder  OutcomeRecorder
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for pipeline events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOutcomeRecorder registers a recorder notified once per request.
func WithOutcomeRecorder(recorder OutcomeRecorder) Option {
	return func(s *Service) {
		s.recorder = recorder
	}
}

// WithPreamble replaces the default system preamble.
func WithPreamble(preamble string) Option {
	return func(s *Service) {
		if strings.TrimSpace(preamble) != "" {
			s.preamble = preamble
		}
	}
}

// NewService creates a Service that sends opts with every backend call.
func NewService(generator core.Generator, opts core.GenerationOptions, options ...Option) (*Service, error) {
	if generator == nil {
		return nil, errors.New("chat: generator must not be nil")
	}
	s := &Service{
		generator: generator,
		options:   opts,
		preamble:  guardrails.SystemPrompt,
		logger:    slog.Default(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Reply runs message through the pipeline. Errors are *core.GatewayError
// values: empty_input, backend_error or backend_unavailable.
func (s *Service) Reply(ctx context.Context, message string) (*core.ChatResponse, error) {
	logger := s.logger
	if requestID := core.GetRequestID(ctx); requestID != "" {
		logger = logger.With("request_id", requestID)
	}

	message = strings.TrimSpace(message)
	if message == "" {
		s.record(OutcomeEmptyInput)
		return nil, core.NewEmptyInputError()
	}

	if name, ok := guardrails.ExtractName(message); ok {
		logger.Debug("introduction detected, skipping backend", "name", name)
		s.record(OutcomeShortCircuit)
		return &core.ChatResponse{Reply: fmt.Sprintf(greetingTemplate, name)}, nil
	}

	prompt := guardrails.BuildPrompt(s.preamble, message)
	logger.Debug("sending prompt to backend", "prompt_length", len(prompt))

	raw, err := s.generator.Generate(ctx, prompt, s.options)
	if err != nil {
		s.logBackendFailure(logger, err)
		return nil, err
	}

	reply := guardrails.SanitizeReply(raw)
	if len(reply) != len(raw) {
		logger.Debug("sanitized backend reply", "raw_length", len(raw), "reply_length", len(reply))
	}
	s.record(OutcomeGenerated)
	return &core.ChatResponse{Reply: reply}, nil
}

func (s *Service) logBackendFailure(logger *slog.Logger, err error) {
	var gatewayErr *core.GatewayError
	if !errors.As(err, &gatewayErr) {
		logger.Error("generation failed", "error", err)
		s.record(OutcomeInternalError)
		return
	}

	switch gatewayErr.Type {
	case core.ErrorTypeBackend:
		logger.Error("backend returned an error",
			"backend", gatewayErr.Backend,
			"status", gatewayErr.BackendStatus,
			"body", gatewayErr.BackendBody,
		)
		s.record(OutcomeBackendError)
	case core.ErrorTypeBackendUnavailable:
		logger.Error("backend connection error",
			"backend", gatewayErr.Backend,
			"error", gatewayErr.Err,
		)
		s.record(OutcomeBackendUnavailable)
	default:
		logger.Error("generation failed", "error", err)
		s.record(OutcomeInternalError)
	}
}

func (s *Service) record(outcome Outcome) {
	if s.recorder != nil {
		s.recorder.RecordOutcome(outcome)
	}
}

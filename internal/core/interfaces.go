package core

import "context"

// Generator produces raw text for a fully composed prompt.
// Implementations must be safe for concurrent use.
type Generator interface {
	// Generate sends prompt to the backend and returns the generated text.
	// A backend failure status yields ErrorTypeBackend, an unreachable
	// backend yields ErrorTypeBackendUnavailable.
	Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error)
}

// AvailabilityChecker is an optional interface for generators that can
// verify their backend is reachable.
type AvailabilityChecker interface {
	// CheckAvailability returns nil if the backend is available, error otherwise.
	CheckAvailability(ctx context.Context) error
}

package output

import (
	"context"
	"time"
)

// TextGenerator is the interface for the external text-completion service.
// This abstraction allows different backends (Gemini, Claude API, claude CLI).
type TextGenerator interface {
	// Generate runs one completion for the request. Implementations make
	// exactly one outbound call and do not retry.
	Generate(ctx context.Context, req GenerationRequest) (*GenerationResponse, error)

	// Name returns the backend identifier (gemini, claude, claude-cli, mock)
	Name() string

	// HealthCheck verifies if the backend is reachable
	HealthCheck(ctx context.Context) error
}

// GenerationRequest represents a request to the generator
type GenerationRequest struct {
	Prompt      string  // The full prompt, template and note combined
	MaxTokens   int     // Maximum tokens to generate (0 = backend default)
	Temperature float64 // Temperature for generation (0.0-1.0)
}

// GenerationResponse represents the generator output
type GenerationResponse struct {
	Text       string            // Generated text, unmodified
	Model      string            // Model that produced the text
	Duration   time.Duration     // Round-trip duration
	TokensUsed int               // Number of tokens used (if reported)
	Metadata   map[string]string // Additional metadata
}

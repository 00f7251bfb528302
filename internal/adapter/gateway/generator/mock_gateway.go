package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/YoshitsuguKoike/noterefiner/internal/application/port/output"
)

// MockGateway is an offline TextGenerator. It echoes the user notes back in a
// small markdown document, which is enough to exercise every front end
// without network access.
type MockGateway struct {
	Delay time.Duration
}

// NewMockGateway creates a new mock gateway
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// Name returns "mock"
func (g *MockGateway) Name() string { return "mock" }

// Generate returns a deterministic document built from the prompt
func (g *MockGateway) Generate(ctx context.Context, req output.GenerationRequest) (*output.GenerationResponse, error) {
	if g.Delay > 0 {
		timer := time.NewTimer(g.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	notes := req.Prompt
	if i := strings.LastIndex(req.Prompt, "USER NOTES:\n"); i >= 0 {
		notes = req.Prompt[i+len("USER NOTES:\n"):]
	}

	var sb strings.Builder
	if strings.Contains(req.Prompt, "Subject") {
		sb.WriteString("Subject: Update\n\n")
	}
	sb.WriteString("## Summary\n\n")
	for _, line := range strings.Split(strings.TrimSpace(notes), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			fmt.Fprintf(&sb, "- %s\n", line)
		}
	}

	return &output.GenerationResponse{
		Text:       sb.String(),
		Model:      "mock",
		Duration:   g.Delay,
		TokensUsed: len(req.Prompt) / 4, // Rough estimate
		Metadata: map[string]string{
			"mock": "true",
		},
	}, nil
}

// HealthCheck always returns success for mock
func (g *MockGateway) HealthCheck(ctx context.Context) error {
	return nil
}

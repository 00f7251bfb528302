package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/YoshitsuguKoike/noterefiner/internal/application/port/output"
	"github.com/YoshitsuguKoike/noterefiner/internal/interface/external/claudecli"
)

// ClaudeCLIGateway implements TextGenerator by shelling out to the claude CLI.
// Tools are disabled: the CLI is only asked to write text.
type ClaudeCLIGateway struct {
	runner claudecli.Runner
	model  string
}

// NewClaudeCLIGateway creates a gateway running bin (default "claude")
func NewClaudeCLIGateway(bin, model string) *ClaudeCLIGateway {
	if bin == "" {
		bin = "claude"
	}
	return &ClaudeCLIGateway{
		runner: claudecli.Runner{Bin: bin},
		model:  model,
	}
}

// Name returns "claude-cli"
func (g *ClaudeCLIGateway) Name() string { return "claude-cli" }

// Generate runs the CLI once with the prompt
func (g *ClaudeCLIGateway) Generate(ctx context.Context, req output.GenerationRequest) (*output.GenerationResponse, error) {
	start := time.Now()

	result, err := g.runner.RunWithOptions(ctx, req.Prompt, &claudecli.RunOptions{
		Model:           g.model,
		DisallowedTools: []string{"Bash", "Edit", "Write", "WebFetch"},
	})
	if err != nil {
		return nil, fmt.Errorf("claude CLI execution failed: %w", err)
	}

	return &output.GenerationResponse{
		Text:     result.Result,
		Model:    g.model,
		Duration: time.Since(start),
		Metadata: map[string]string{
			"session_id": result.SessionID,
			"cost_usd":   fmt.Sprintf("%.4f", result.TotalCost),
		},
	}, nil
}

// HealthCheck runs a trivial prompt
func (g *ClaudeCLIGateway) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := g.runner.Run(ctx, "ping"); err != nil {
		return fmt.Errorf("claude CLI health check failed: %w", err)
	}
	return nil
}

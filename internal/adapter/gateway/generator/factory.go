package generator

import (
	"fmt"

	"github.com/YoshitsuguKoike/noterefiner/internal/app/config"
	"github.com/YoshitsuguKoike/noterefiner/internal/application/port/output"
)

// NewTextGenerator creates a generator based on cfg.Type.
// Supported types: gemini, anthropic, claude-cli, mock
func NewTextGenerator(cfg config.GeneratorConfig) (output.TextGenerator, error) {
	switch cfg.Type {
	case config.GeneratorGemini, "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set for gemini")
		}
		return NewGeminiGateway(cfg.APIKey, cfg.BaseURL, cfg.Model), nil

	case config.GeneratorAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set for anthropic")
		}
		return NewClaudeGateway(cfg.APIKey, cfg.BaseURL, cfg.Model), nil

	case config.GeneratorClaudeCLI:
		return NewClaudeCLIGateway(cfg.Bin, cfg.Model), nil

	case config.GeneratorMock:
		return NewMockGateway(), nil

	default:
		return nil, fmt.Errorf("unknown generator type: %s (supported: %s)", cfg.Type, "gemini, anthropic, claude-cli, mock")
	}
}

// AvailableGenerators returns the generator types that can run with cfg's credentials
func AvailableGenerators(cfg config.GeneratorConfig) []string {
	available := []string{}
	if cfg.Type == config.GeneratorGemini && cfg.APIKey != "" {
		available = append(available, config.GeneratorGemini)
	}
	if cfg.Type == config.GeneratorAnthropic && cfg.APIKey != "" {
		available = append(available, config.GeneratorAnthropic)
	}
	return append(available, config.GeneratorClaudeCLI, config.GeneratorMock)
}

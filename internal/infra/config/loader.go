package config

import (
	"os"

	"github.com/YoshitsuguKoike/noterefiner/internal/app/config"
)

// Environment variables read at startup
const (
	EnvHome         = "NOTEREFINER_HOME"
	EnvGeminiKey    = "GEMINI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
)

// DefaultHome is used when NOTEREFINER_HOME is unset
const DefaultHome = ".noterefiner"

// ResolveHome returns the configuration home directory
func ResolveHome() string {
	if v := os.Getenv(EnvHome); v != "" {
		return v
	}
	return DefaultHome
}

// apiKeyFor returns the API key for the generator type from the environment
func apiKeyFor(generatorType string) string {
	switch generatorType {
	case config.GeneratorAnthropic:
		return os.Getenv(EnvAnthropicKey)
	case config.GeneratorGemini:
		return os.Getenv(EnvGeminiKey)
	default:
		return ""
	}
}

package config

import "time"

// Generator types
const (
	GeneratorGemini    = "gemini"
	GeneratorAnthropic = "anthropic"
	GeneratorClaudeCLI = "claude-cli"
	GeneratorRemote    = "remote"
	GeneratorMock      = "mock"
)

// Store backends
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config holds the resolved application configuration. It is built by the
// infrastructure layer from config.yaml, environment and defaults.
type Config struct {
	Home      string // Base directory (NOTEREFINER_HOME)
	Generator GeneratorConfig
	Store     StoreConfig
	Server    ServerConfig
	Log       LogConfig
	ModesFile string // Optional YAML mode table replacing the builtin one

	// Metadata
	ConfigSource string // "yaml" or "default"
	SettingPath  string // Path to config.yaml if loaded from file
}

// GeneratorConfig selects and configures the text generation backend
type GeneratorConfig struct {
	Type        string        // gemini, anthropic, claude-cli, remote, mock
	Model       string        // Model name passed to the API
	APIKey      string        // From GEMINI_API_KEY / ANTHROPIC_API_KEY, never from the file
	BaseURL     string        // API base URL, or the refine endpoint for "remote"
	Bin         string        // Binary for claude-cli
	Timeout     time.Duration // Per-call deadline
	MaxTokens   int
	Temperature float64
}

// StoreConfig selects where the note history lives
type StoreConfig struct {
	Backend      string // file, sqlite, memory
	Path         string // Directory (file) or database file (sqlite)
	Key          string // Key the history is stored under
	SQLiteDriver string // sqlite3 (cgo) or sqlite (pure Go)
	DateLayout   string // Go time layout for createdAt
}

// ServerConfig configures the HTTP refine endpoint
type ServerConfig struct {
	Addr string
}

// LogConfig configures the stderr logger
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text or json
}

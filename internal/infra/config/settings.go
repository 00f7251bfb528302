package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/YoshitsuguKoike/noterefiner/internal/app/config"
)

// SettingsFile is the file name looked up in the home directory
const SettingsFile = "config.yaml"

// RawSettings represents the structure of config.yaml.
// Pointer fields distinguish "unset" from zero values.
type RawSettings struct {
	Generator struct {
		Type        *string  `yaml:"type"`
		Model       *string  `yaml:"model"`
		BaseURL     *string  `yaml:"base_url"`
		Bin         *string  `yaml:"bin"`
		TimeoutSec  *int     `yaml:"timeout_sec"`
		MaxTokens   *int     `yaml:"max_tokens"`
		Temperature *float64 `yaml:"temperature"`
	} `yaml:"generator"`

	Store struct {
		Backend      *string `yaml:"backend"`
		Path         *string `yaml:"path,omitempty"`
		Key          *string `yaml:"key"`
		SQLiteDriver *string `yaml:"sqlite_driver"`
		DateLayout   *string `yaml:"date_layout"`
	} `yaml:"store"`

	Server struct {
		Addr *string `yaml:"addr"`
	} `yaml:"server"`

	Log struct {
		Level  *string `yaml:"level"`
		Format *string `yaml:"format"`
	} `yaml:"log"`

	ModesFile *string `yaml:"modes_file,omitempty"`
}

// Overrides are command line values that win over config.yaml
type Overrides struct {
	Generator string
	Store     string
	LogLevel  string
	LogFormat string
}

// LoadSettings loads configuration from <baseDir>/config.yaml.
// Priority: config.yaml > defaults. API keys come from the environment only.
func LoadSettings(baseDir string) (*config.Config, error) {
	return LoadSettingsWithOverrides(baseDir, Overrides{})
}

// LoadSettingsWithOverrides is LoadSettings with flag values applied on top of
// the file. Switching generator or store drops the file's type specific
// model, URL and path so the defaults for the new type apply.
func LoadSettingsWithOverrides(baseDir string, ov Overrides) (*config.Config, error) {
	settings := &RawSettings{}
	configSource := "default"
	settingPath := ""

	yamlPath := filepath.Join(baseDir, SettingsFile)
	data, err := os.ReadFile(yamlPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", yamlPath, err)
		}
		configSource = "yaml"
		settingPath = yamlPath
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read %s: %w", yamlPath, err)
	}

	applyOverrides(settings, ov)
	applyDefaults(settings, baseDir)

	cfg := buildConfig(settings, baseDir, configSource, settingPath)
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", yamlPath, err)
	}
	return cfg, nil
}

func applyOverrides(s *RawSettings, ov Overrides) {
	if ov.Generator != "" && (s.Generator.Type == nil || *s.Generator.Type != ov.Generator) {
		v := ov.Generator
		s.Generator.Type = &v
		s.Generator.Model = nil
		s.Generator.BaseURL = nil
	}
	if ov.Store != "" && (s.Store.Backend == nil || *s.Store.Backend != ov.Store) {
		v := ov.Store
		s.Store.Backend = &v
		s.Store.Path = nil
	}
	if ov.LogLevel != "" {
		v := ov.LogLevel
		s.Log.Level = &v
	}
	if ov.LogFormat != "" {
		v := ov.LogFormat
		s.Log.Format = &v
	}
}

// applyDefaults fills in default values for any nil fields
func applyDefaults(s *RawSettings, baseDir string) {
	str := func(p **string, v string) {
		if *p == nil {
			*p = &v
		}
	}
	num := func(p **int, v int) {
		if *p == nil {
			*p = &v
		}
	}

	str(&s.Generator.Type, config.GeneratorGemini)
	switch *s.Generator.Type {
	case config.GeneratorAnthropic:
		str(&s.Generator.Model, "claude-sonnet-4-5")
		str(&s.Generator.BaseURL, "https://api.anthropic.com")
	case config.GeneratorRemote:
		str(&s.Generator.Model, "")
		str(&s.Generator.BaseURL, "http://localhost:8080")
	default:
		str(&s.Generator.Model, "gemini-flash-latest")
		str(&s.Generator.BaseURL, "https://generativelanguage.googleapis.com")
	}
	str(&s.Generator.Bin, "claude")
	num(&s.Generator.TimeoutSec, 60)
	num(&s.Generator.MaxTokens, 2048)
	if s.Generator.Temperature == nil {
		v := 0.7
		s.Generator.Temperature = &v
	}

	str(&s.Store.Backend, config.StoreFile)
	if *s.Store.Backend == config.StoreSQLite {
		str(&s.Store.Path, filepath.Join(baseDir, "notes.db"))
	} else {
		str(&s.Store.Path, filepath.Join(baseDir, "var"))
	}
	str(&s.Store.Key, "my_tech_notes")
	str(&s.Store.SQLiteDriver, "sqlite")
	str(&s.Store.DateLayout, "1/2/2006")

	str(&s.Server.Addr, ":8080")

	str(&s.Log.Level, "warn")
	str(&s.Log.Format, "text")
}

// buildConfig converts RawSettings to Config
func buildConfig(s *RawSettings, baseDir, configSource, settingPath string) *config.Config {
	cfg := &config.Config{
		Home: baseDir,
		Generator: config.GeneratorConfig{
			Type:        strings.ToLower(*s.Generator.Type),
			Model:       *s.Generator.Model,
			BaseURL:     strings.TrimRight(*s.Generator.BaseURL, "/"),
			Bin:         *s.Generator.Bin,
			Timeout:     time.Duration(*s.Generator.TimeoutSec) * time.Second,
			MaxTokens:   *s.Generator.MaxTokens,
			Temperature: *s.Generator.Temperature,
		},
		Store: config.StoreConfig{
			Backend:      strings.ToLower(*s.Store.Backend),
			Path:         *s.Store.Path,
			Key:          *s.Store.Key,
			SQLiteDriver: *s.Store.SQLiteDriver,
			DateLayout:   *s.Store.DateLayout,
		},
		Server: config.ServerConfig{Addr: *s.Server.Addr},
		Log: config.LogConfig{
			Level:  *s.Log.Level,
			Format: *s.Log.Format,
		},
		ConfigSource: configSource,
		SettingPath:  settingPath,
	}
	if s.ModesFile != nil && *s.ModesFile != "" {
		cfg.ModesFile = *s.ModesFile
		if !filepath.IsAbs(cfg.ModesFile) {
			cfg.ModesFile = filepath.Join(baseDir, cfg.ModesFile)
		}
	}
	cfg.Generator.APIKey = apiKeyFor(cfg.Generator.Type)
	return cfg
}

func validate(cfg *config.Config) error {
	switch cfg.Generator.Type {
	case config.GeneratorGemini, config.GeneratorAnthropic, config.GeneratorClaudeCLI,
		config.GeneratorRemote, config.GeneratorMock:
	default:
		return fmt.Errorf("unknown generator type %q", cfg.Generator.Type)
	}
	switch cfg.Store.Backend {
	case config.StoreFile, config.StoreSQLite, config.StoreMemory:
	default:
		return fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if cfg.Generator.Timeout <= 0 {
		return fmt.Errorf("generator.timeout_sec must be positive")
	}
	return nil
}

// CreateDefaultSettings returns the content of a default config.yaml
func CreateDefaultSettings() []byte {
	settings := &RawSettings{}
	applyDefaults(settings, DefaultHome)
	// the store path follows the home directory unless set explicitly
	settings.Store.Path = nil

	data, _ := yaml.Marshal(settings)
	return data
}

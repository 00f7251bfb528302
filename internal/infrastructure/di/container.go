package di

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/afero"

	"github.com/YoshitsuguKoike/noterefiner/internal/adapter/gateway/generator"
	"github.com/YoshitsuguKoike/noterefiner/internal/adapter/gateway/refineclient"
	"github.com/YoshitsuguKoike/noterefiner/internal/adapter/presenter"
	appconfig "github.com/YoshitsuguKoike/noterefiner/internal/app/config"
	"github.com/YoshitsuguKoike/noterefiner/internal/application/port/input"
	"github.com/YoshitsuguKoike/noterefiner/internal/application/port/output"
	"github.com/YoshitsuguKoike/noterefiner/internal/application/service"
	"github.com/YoshitsuguKoike/noterefiner/internal/application/usecase/lifecycle"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/mode"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/repository"
	"github.com/YoshitsuguKoike/noterefiner/internal/infrastructure/persistence/file"
	"github.com/YoshitsuguKoike/noterefiner/internal/infrastructure/persistence/memory"
	"github.com/YoshitsuguKoike/noterefiner/internal/infrastructure/persistence/sqlite"
	"github.com/YoshitsuguKoike/noterefiner/internal/interface/mcptools"
	"github.com/YoshitsuguKoike/noterefiner/internal/interface/web"
)

// Output formats
const (
	FormatMarkdown = "markdown" // glamour-rendered
	FormatPlain    = "plain"    // raw text
	FormatJSON     = "json"
)

// Container is the DI container that holds all dependencies
// This implements manual dependency injection for Clean Architecture
type Container struct {
	// Infrastructure Layer
	backend repository.BlobStore

	// Infrastructure Layer - Gateways
	generator output.TextGenerator // nil when refining through a remote endpoint

	// Domain Layer
	modes *mode.Registry

	// Application Layer
	notes      *service.NoteStore
	refiner    input.Refiner
	controller *lifecycle.Controller

	// Adapter Layer - Presenters
	presenter output.Presenter

	logger *slog.Logger
	config Config
}

// Config holds configuration for the container
type Config struct {
	App          *appconfig.Config
	OutputFormat string // markdown, plain, json
	OutputWriter io.Writer
	Version      string
	Logger       *slog.Logger
	Fs           afero.Fs // File store filesystem (default: OS)

	// HistoryOnly skips the generator and refiner for commands that only
	// read or edit the saved notes
	HistoryOnly bool
}

// NewContainer creates and initializes the DI container
func NewContainer(config Config) (*Container, error) {
	if config.App == nil {
		return nil, fmt.Errorf("container requires application config")
	}
	if config.OutputWriter == nil {
		config.OutputWriter = os.Stdout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Fs == nil {
		config.Fs = afero.NewOsFs()
	}

	c := &Container{
		config: config,
		logger: config.Logger,
	}

	// Initialize dependencies in dependency order
	if err := c.initializeInfrastructure(); err != nil {
		return nil, fmt.Errorf("failed to initialize infrastructure: %w", err)
	}

	if err := c.initializeDomain(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize domain: %w", err)
	}

	if err := c.initializeApplication(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}

	c.initializeAdapters()
	return c, nil
}

// initializeInfrastructure opens the history backend and the generator
func (c *Container) initializeInfrastructure() error {
	store := c.config.App.Store

	switch store.Backend {
	case appconfig.StoreMemory:
		c.backend = memory.NewBlobStore()

	case appconfig.StoreSQLite:
		if err := c.config.Fs.MkdirAll(filepath.Dir(store.Path), 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
		db, err := sqlite.Open(store.SQLiteDriver, store.Path)
		if err != nil {
			return err
		}
		c.backend = db

	case appconfig.StoreFile, "":
		c.backend = file.NewBlobStore(c.config.Fs, store.Path)

	default:
		return fmt.Errorf("unknown store backend: %s", store.Backend)
	}

	gen := c.config.App.Generator
	if c.config.HistoryOnly || gen.Type == appconfig.GeneratorRemote {
		return nil
	}
	g, err := generator.NewTextGenerator(gen)
	if err != nil {
		c.backend.Close()
		return fmt.Errorf("failed to create text generator: %w", err)
	}
	c.generator = g
	return nil
}

// initializeDomain loads the mode table
func (c *Container) initializeDomain() error {
	path := c.config.App.ModesFile
	if path == "" {
		c.modes = mode.Builtin()
		return nil
	}
	data, err := afero.ReadFile(c.config.Fs, path)
	if err != nil {
		return fmt.Errorf("failed to read mode table: %w", err)
	}
	modes, err := mode.Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	c.modes = modes
	return nil
}

// initializeApplication wires the note store, refiner and controller
func (c *Container) initializeApplication() error {
	store := c.config.App.Store
	c.notes = service.NewNoteStore(c.backend, service.NoteStoreConfig{
		Key:        store.Key,
		DateLayout: store.DateLayout,
		Logger:     c.logger.With(slog.String("component", "notes")),
	})
	c.notes.Load(context.Background())

	if c.config.HistoryOnly {
		return nil
	}

	gen := c.config.App.Generator
	if c.generator == nil {
		c.refiner = refineclient.New(gen.BaseURL, refineclient.WithTimeout(gen.Timeout))
	} else {
		c.refiner = service.NewRefineService(
			service.NewPromptBuilderService(c.modes),
			c.generator,
			service.RefineConfig{Timeout: gen.Timeout, MaxTokens: gen.MaxTokens, Temperature: gen.Temperature},
			c.logger.With(slog.String("component", "refine")),
		)
	}

	c.controller = lifecycle.NewController(c.refiner, c.notes, c.logger.With(slog.String("component", "session")))
	return nil
}

// initializeAdapters picks the presenter for the output format
func (c *Container) initializeAdapters() {
	switch c.config.OutputFormat {
	case FormatJSON:
		c.presenter = presenter.NewJSONPresenter(c.config.OutputWriter)
	case FormatPlain:
		c.presenter = presenter.NewMarkdownPresenter(c.config.OutputWriter, false, 0)
	default:
		c.presenter = presenter.NewMarkdownPresenter(c.config.OutputWriter, true, 100)
	}
}

// GetNoteStore returns the loaded note history
func (c *Container) GetNoteStore() *service.NoteStore {
	return c.notes
}

// GetRefiner returns the refiner used by every front end. It is nil for a
// HistoryOnly container.
func (c *Container) GetRefiner() input.Refiner {
	return c.refiner
}

// GetController returns the session controller
func (c *Container) GetController() *lifecycle.Controller {
	return c.controller
}

// GetGenerator returns the text generator, or nil for a remote refiner
func (c *Container) GetGenerator() output.TextGenerator {
	return c.generator
}

// GetModes returns the mode registry
func (c *Container) GetModes() *mode.Registry {
	return c.modes
}

// GetPresenter returns the output presenter
func (c *Container) GetPresenter() output.Presenter {
	return c.presenter
}

// GetLogger returns the root logger
func (c *Container) GetLogger() *slog.Logger {
	return c.logger
}

// NewWebServer builds the HTTP server over the container's services
func (c *Container) NewWebServer() *web.Server {
	return web.NewServer(c.refiner, c.notes, c.modes, c.logger.With(slog.String("component", "web")))
}

// NewMCPServer builds the MCP server over the container's services
func (c *Container) NewMCPServer() *server.MCPServer {
	return mcptools.NewServer(c.config.Version, c.refiner, c.notes, c.modes)
}

// Close releases the history backend
func (c *Container) Close() error {
	if c.backend != nil {
		if err := c.backend.Close(); err != nil {
			return fmt.Errorf("failed to close store: %w", err)
		}
	}
	return nil
}

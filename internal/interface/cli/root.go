package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/noterefiner/internal/app"
	"github.com/YoshitsuguKoike/noterefiner/internal/app/config"
	"github.com/YoshitsuguKoike/noterefiner/internal/application/port/output"
	"github.com/YoshitsuguKoike/noterefiner/internal/buildinfo"
	infraConfig "github.com/YoshitsuguKoike/noterefiner/internal/infra/config"
	"github.com/YoshitsuguKoike/noterefiner/internal/infrastructure/di"
	"github.com/YoshitsuguKoike/noterefiner/internal/interface/cli/version"
)

// globalFlags are the persistent flags shared by every command
type globalFlags struct {
	home      string
	generator string
	store     string
	logLevel  string
	logFormat string
}

// session is what PersistentPreRunE resolved for the subcommands
type session struct {
	flags  globalFlags
	cfg    *config.Config
	logger *slog.Logger
}

// presentedError marks an error the presenter already showed to the user
type presentedError struct {
	error
}

func (e presentedError) Unwrap() error { return e.error }

// reportError shows err through the presenter and marks it as shown
func reportError(p output.Presenter, err error) error {
	_ = p.PresentError(err)
	return presentedError{err}
}

func NewRoot() *cobra.Command {
	s := &session{}

	cmd := &cobra.Command{
		Use:           "noterefiner",
		Short:         "Turn rough notes into structured documents",
		Long:          "noterefiner rewrites raw notes as ticket logs, emails, meeting minutes or knowledge base articles and keeps a searchable history of the results.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.load(cmd.ErrOrStderr())
		},
		RunE: func(c *cobra.Command, _ []string) error { return c.Help() },
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&s.flags.home, "home", "", "configuration directory (default $"+infraConfig.EnvHome+" or "+infraConfig.DefaultHome+")")
	pf.StringVar(&s.flags.generator, "generator", "", "text generator: gemini, anthropic, claude-cli, remote, mock")
	pf.StringVar(&s.flags.store, "store", "", "history backend: file, sqlite, memory")
	pf.StringVar(&s.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&s.flags.logFormat, "log-format", "", "log format: text, json")

	cmd.AddCommand(newRefineCmd(s))
	cmd.AddCommand(newNotesCmd(s))
	cmd.AddCommand(newModesCmd(s))
	cmd.AddCommand(newServeCmd(s))
	cmd.AddCommand(newMCPCmd(s))
	cmd.AddCommand(newTUICmd(s))
	cmd.AddCommand(newDoctorCmd(s))
	cmd.AddCommand(newInitCmd(s))
	cmd.AddCommand(version.NewCommand())
	return cmd
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	root := NewRoot()
	if err := root.Execute(); err != nil {
		var presented presentedError
		if !errors.As(err, &presented) {
			fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		}
		return 1
	}
	return 0
}

func (s *session) load(stderr io.Writer) error {
	home := s.flags.home
	if home == "" {
		home = infraConfig.ResolveHome()
	}

	cfg, err := infraConfig.LoadSettingsWithOverrides(home, infraConfig.Overrides{
		Generator: s.flags.generator,
		Store:     s.flags.store,
		LogLevel:  s.flags.logLevel,
		LogFormat: s.flags.logFormat,
	})
	if err != nil {
		return err
	}

	s.cfg = cfg
	s.logger = app.NewLogger(cfg.Log.Level, cfg.Log.Format, stderr)
	s.logger.Debug("configuration loaded",
		slog.String("source", cfg.ConfigSource),
		slog.String("home", cfg.Home),
		slog.String("generator", cfg.Generator.Type),
		slog.String("store", cfg.Store.Backend))
	return nil
}

// container builds the dependency graph for one command invocation
func (s *session) container(cmd *cobra.Command, format string) (*di.Container, error) {
	return s.newContainer(cmd, format, false)
}

// historyContainer is a container without a generator, for commands that
// never refine
func (s *session) historyContainer(cmd *cobra.Command, format string) (*di.Container, error) {
	return s.newContainer(cmd, format, true)
}

func (s *session) newContainer(cmd *cobra.Command, format string, historyOnly bool) (*di.Container, error) {
	return di.NewContainer(di.Config{
		App:          s.cfg,
		OutputFormat: format,
		OutputWriter: cmd.OutOrStdout(),
		Version:      buildinfo.GetVersion(),
		Logger:       s.logger,
		HistoryOnly:  historyOnly,
	})
}

// outputFormat maps the --json/--plain flags to a container format
func outputFormat(jsonOut, plain bool) string {
	switch {
	case jsonOut:
		return di.FormatJSON
	case plain:
		return di.FormatPlain
	default:
		return di.FormatMarkdown
	}
}

// stdinIsTerminal reports whether r is an interactive terminal
func stdinIsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/noterefiner/internal/adapter/gateway/generator"
	"github.com/YoshitsuguKoike/noterefiner/internal/app"
	"github.com/YoshitsuguKoike/noterefiner/internal/app/config"
)

// Check statuses
const (
	statusOK    = "OK"
	statusWarn  = "WARN"
	statusError = "ERROR"
)

const healthCheckTimeout = 10 * time.Second

// DoctorCheck is one line of the doctor report
type DoctorCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// DoctorJSON represents the JSON output structure for doctor command
type DoctorJSON struct {
	Home         string        `json:"home"`
	ConfigSource string        `json:"config_source"`
	Generator    string        `json:"generator"`
	Model        string        `json:"model,omitempty"`
	Store        string        `json:"store"`
	StorePath    string        `json:"store_path,omitempty"`
	Checks       []DoctorCheck `json:"checks"`
	Errors       int           `json:"errors"`
}

func newDoctorCmd(s *session) *cobra.Command {
	var (
		jsonOutput bool
		offline    bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check environment & configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report := runDoctor(cmd, s, offline)

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				printDoctor(cmd, report)
			}

			if report.Errors > 0 {
				return presentedError{fmt.Errorf("doctor found %d problem(s)", report.Errors)}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the generator reachability check")
	return cmd
}

func runDoctor(cmd *cobra.Command, s *session, offline bool) *DoctorJSON {
	cfg := s.cfg
	paths := app.ResolvePaths(cfg.Home)

	report := &DoctorJSON{
		Home:         paths.Home,
		ConfigSource: cfg.ConfigSource,
		Generator:    cfg.Generator.Type,
		Model:        cfg.Generator.Model,
		Store:        cfg.Store.Backend,
		StorePath:    cfg.Store.Path,
	}
	add := func(name, status, format string, a ...interface{}) {
		report.Checks = append(report.Checks, DoctorCheck{Name: name, Status: status, Detail: fmt.Sprintf(format, a...)})
		if status == statusError {
			report.Errors++
		}
	}

	if cfg.SettingPath != "" {
		add("config", statusOK, "loaded %s", cfg.SettingPath)
	} else {
		add("config", statusWarn, "%s not found, using defaults (run 'noterefiner init')", paths.Settings)
	}

	checkStoreDir(cfg, add)

	c, err := s.historyContainer(cmd, "")
	if err != nil {
		add("history", statusError, "%v", err)
	} else {
		add("history", statusOK, "%d saved note(s) under key %q", c.GetNoteStore().Len(), cfg.Store.Key)
		c.Close()
	}

	if cfg.ModesFile != "" {
		if _, err := os.Stat(cfg.ModesFile); err != nil {
			add("modes", statusError, "%v", err)
		} else {
			add("modes", statusOK, "custom mode table %s", cfg.ModesFile)
		}
	}

	checkGenerator(cmd.Context(), cfg.Generator, offline, add)
	return report
}

func checkStoreDir(cfg *config.Config, add func(name, status, format string, a ...interface{})) {
	var dir string
	switch cfg.Store.Backend {
	case config.StoreMemory:
		add("store", statusWarn, "memory backend: notes are lost on exit")
		return
	case config.StoreSQLite:
		dir = filepath.Dir(cfg.Store.Path)
	default:
		dir = cfg.Store.Path
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		add("store", statusError, "cannot create %s: %v", dir, err)
		return
	}
	probeFile := filepath.Join(dir, ".probe")
	f, err := os.Create(probeFile)
	if err != nil {
		add("store", statusError, "write check failed in %s: %v", dir, err)
		return
	}
	f.Close()
	os.Remove(probeFile)
	add("store", statusOK, "write permission in %s", dir)
}

func checkGenerator(ctx context.Context, gen config.GeneratorConfig, offline bool, add func(name, status, format string, a ...interface{})) {
	switch gen.Type {
	case config.GeneratorRemote:
		add("generator", statusOK, "remote refine endpoint %s", gen.BaseURL)
		return
	case config.GeneratorClaudeCLI:
		if _, err := exec.LookPath(gen.Bin); err != nil {
			add("generator", statusError, "%s not found in PATH", gen.Bin)
			return
		}
		add("generator", statusOK, "%s found", gen.Bin)
		return
	}

	g, err := generator.NewTextGenerator(gen)
	if err != nil {
		add("generator", statusError, "%v", err)
		return
	}
	if offline {
		add("generator", statusOK, "%s configured (not contacted)", g.Name())
		return
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	if err := g.HealthCheck(ctx); err != nil {
		add("generator", statusError, "%s unreachable: %v", g.Name(), err)
		return
	}
	add("generator", statusOK, "%s reachable (model %s)", g.Name(), gen.Model)
}

func printDoctor(cmd *cobra.Command, report *DoctorJSON) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Home:", report.Home)
	fmt.Fprintln(out, "Generator:", report.Generator)
	fmt.Fprintln(out, "Store:", report.Store)
	for _, c := range report.Checks {
		fmt.Fprintf(out, "%s: %s: %s\n", c.Status, c.Name, c.Detail)
	}
}

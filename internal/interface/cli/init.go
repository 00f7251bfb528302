package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/noterefiner/internal/app"
	infraConfig "github.com/YoshitsuguKoike/noterefiner/internal/infra/config"
)

func newInitCmd(s *session) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config.yaml into the home directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := app.ResolvePaths(s.cfg.Home)

			if _, err := os.Stat(paths.Settings); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", paths.Settings)
			}
			if err := os.MkdirAll(paths.Home, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", paths.Home, err)
			}
			if err := os.WriteFile(paths.Settings, infraConfig.CreateDefaultSettings(), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", paths.Settings, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created %s\n", paths.Settings)
			fmt.Fprintf(out, "Set %s (or %s with generator.type: anthropic) before refining.\n",
				infraConfig.EnvGeminiKey, infraConfig.EnvAnthropicKey)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config.yaml")
	return cmd
}

package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/noterefiner/internal/app/config"
)

func newServeCmd(s *session) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the refine endpoint and the notes API over HTTP",
		Long: `Serve the refine endpoint and the notes API over HTTP.

  POST   /api/refine      {"note": "...", "mode": "email"} -> {"output": "..."}
  GET    /api/modes
  GET    /api/notes?q=
  POST   /api/notes       {"original": "...", "refined": "...", "mode": "..."}
  GET    /api/notes/:id
  DELETE /api/notes/:id
  GET    /healthz

The notes API serves this machine's history; run it for yourself, not as a
shared service.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = s.cfg.Server.Addr
			}
			if s.cfg.Generator.Type == config.GeneratorRemote {
				return fmt.Errorf("serve needs a local generator: generator type %q would forward /api/refine to %s (use --generator gemini, anthropic, claude-cli or mock)",
					config.GeneratorRemote, s.cfg.Generator.BaseURL)
			}

			c, err := s.container(cmd, "")
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.ErrOrStderr(), "noterefiner listening on %s (generator: %s)\n", addr, s.cfg.Generator.Type)
			return c.NewWebServer().Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

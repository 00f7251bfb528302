package cli

import (
	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/noterefiner/internal/interface/tui"
)

func newTUICmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive editor",
		Long: `Open the interactive editor.

Type a note, pick a mode with tab, generate with ctrl+g and save with ctrl+s.
ctrl+o opens the history, where enter loads a saved note back for editing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.container(cmd, "")
			if err != nil {
				return err
			}
			defer c.Close()

			ctx := cmd.Context()
			return tui.Run(ctx, tui.NewApp(ctx, c.GetController(), c.GetNoteStore(), c.GetModes()))
		},
	}
}

package cli

import (
	"github.com/spf13/cobra"
)

func newModesCmd(s *session) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "modes",
		Short: "List the refinement modes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.historyContainer(cmd, outputFormat(jsonOut, false))
			if err != nil {
				return err
			}
			defer c.Close()

			return c.GetPresenter().PresentSuccess("", c.GetModes().Modes())
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	return cmd
}

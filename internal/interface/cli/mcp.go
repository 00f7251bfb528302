package cli

import (
	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/noterefiner/internal/interface/mcptools"
)

func newMCPCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run as an MCP server over stdio",
		Long: `Run as an MCP server over stdio.

Register it with an MCP client, for example:

  {"mcpServers": {"noterefiner": {"command": "noterefiner", "args": ["mcp"]}}}

Logs go to stderr so stdout stays reserved for the protocol.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.container(cmd, "")
			if err != nil {
				return err
			}
			defer c.Close()

			return mcptools.ServeStdio(c.NewMCPServer())
		},
	}
}

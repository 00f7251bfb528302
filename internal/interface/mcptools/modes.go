package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/YoshitsuguKoike/noterefiner/internal/domain/mode"
)

// ModesTool handles the list_modes MCP tool.
type ModesTool struct {
	modes *mode.Registry
}

// NewModesTool creates a ModesTool.
func NewModesTool(modes *mode.Registry) *ModesTool {
	return &ModesTool{modes: modes}
}

// Definition returns the MCP tool definition for list_modes.
func (t *ModesTool) Definition() mcp.Tool {
	return mcp.NewTool("list_modes",
		mcp.WithDescription("List the document types refine_note can produce."),
	)
}

// Handle processes the list_modes tool call.
func (t *ModesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	for _, m := range t.modes.Modes() {
		marker := ""
		if m.ID == mode.SessionDefault {
			marker = " (default)"
		}
		fmt.Fprintf(&b, "- %s: %s%s\n", m.ID, m.Label, marker)
	}
	return mcp.NewToolResultText(b.String()), nil
}

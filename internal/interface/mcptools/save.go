package mcptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// SaveTool handles the save_note MCP tool.
type SaveTool struct {
	notes NoteStore
}

// NewSaveTool creates a SaveTool.
func NewSaveTool(notes NoteStore) *SaveTool {
	return &SaveTool{notes: notes}
}

// Definition returns the MCP tool definition for save_note.
func (t *SaveTool) Definition() mcp.Tool {
	return mcp.NewTool("save_note",
		mcp.WithDescription("Save an original note and its refined text to the history."),
		mcp.WithString("original",
			mcp.Description("The rough notes that were refined"),
		),
		mcp.WithString("refined",
			mcp.Required(),
			mcp.Description("The refined document"),
		),
		mcp.WithString("mode",
			mcp.Description("Mode the document was refined with"),
		),
	)
}

// Handle processes the save_note tool call.
func (t *SaveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	refined := req.GetString("refined", "")
	if refined == "" {
		return mcp.NewToolResultError("'refined' is required"), nil
	}

	n, err := t.notes.Create(ctx, req.GetString("original", ""), refined, req.GetString("mode", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("save failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Saved to History! (id %d)", n.ID)), nil
}

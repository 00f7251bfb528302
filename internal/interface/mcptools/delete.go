package mcptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// DeleteTool handles the delete_note MCP tool.
type DeleteTool struct {
	notes NoteStore
}

// NewDeleteTool creates a DeleteTool.
func NewDeleteTool(notes NoteStore) *DeleteTool {
	return &DeleteTool{notes: notes}
}

// Definition returns the MCP tool definition for delete_note.
func (t *DeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_note",
		mcp.WithDescription("Delete one note from the history by id. Unknown ids are ignored."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Note id as shown by search_notes"),
		),
	)
}

// Handle processes the delete_note tool call.
func (t *DeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := idArg(req, "id")
	if !ok {
		return mcp.NewToolResultError("'id' must be a note id"), nil
	}

	_, existed := t.notes.Get(id)
	if err := t.notes.Delete(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", err)), nil
	}
	if !existed {
		return mcp.NewToolResultText(fmt.Sprintf("Note %d was not in the history.", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted note %d.", id)), nil
}

package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/YoshitsuguKoike/noterefiner/internal/domain/mode"
)

// SearchTool handles the search_notes MCP tool.
type SearchTool struct {
	notes NoteStore
	modes *mode.Registry
}

// NewSearchTool creates a SearchTool.
func NewSearchTool(notes NoteStore, modes *mode.Registry) *SearchTool {
	return &SearchTool{notes: notes, modes: modes}
}

// Definition returns the MCP tool definition for search_notes.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("search_notes",
		mcp.WithDescription(
			"Search the saved note history. Matches the original or refined text, ignoring case. "+
				"An empty query lists the newest notes.",
		),
		mcp.WithString("query",
			mcp.Description("Text to look for"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default: 10, max: 50)"),
		),
	)
}

// Handle processes the search_notes tool call.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	limit := intArg(req, "limit", 10)
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	results := t.notes.Search(query)
	if len(results) == 0 {
		return mcp.NewToolResultText("No notes found matching your query."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d of %d notes:\n\n", len(results), t.notes.Len())
	for i, n := range results {
		if i == limit {
			fmt.Fprintf(&b, "... %d more\n", len(results)-limit)
			break
		}
		fmt.Fprintf(&b, "[%d] #%d %s (%s)\n    original: %s\n    refined: %s\n\n",
			i+1, n.ID, n.CreatedAt, t.modes.Label(n.Mode),
			truncate(n.Original, 200),
			truncate(n.Refined, 300),
		)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

package mcptools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/YoshitsuguKoike/noterefiner/internal/application/port/input"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/mode"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/refine"
)

// RefineTool handles the refine_note MCP tool.
type RefineTool struct {
	refiner input.Refiner
	notes   NoteStore
	modes   *mode.Registry
}

// NewRefineTool creates a RefineTool.
func NewRefineTool(refiner input.Refiner, notes NoteStore, modes *mode.Registry) *RefineTool {
	return &RefineTool{refiner: refiner, notes: notes, modes: modes}
}

// Definition returns the MCP tool definition for refine_note.
func (t *RefineTool) Definition() mcp.Tool {
	return mcp.NewTool("refine_note",
		mcp.WithDescription(
			"Rewrite rough notes into a structured professional document. "+
				"The mode selects the document type; unknown modes get a general clean-up.",
		),
		mcp.WithString("note",
			mcp.Required(),
			mcp.Description("The rough notes to refine"),
		),
		mcp.WithString("mode",
			mcp.Description("tech_support (default), email, meeting_minutes or kb_article"),
		),
		mcp.WithBoolean("save",
			mcp.Description("Also save the result to the note history (default: false)"),
		),
	)
}

// Handle processes the refine_note tool call.
func (t *RefineTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	note := req.GetString("note", "")
	modeID := req.GetString("mode", mode.SessionDefault)

	output, err := t.refiner.Refine(ctx, note, modeID)
	if err != nil {
		return mcp.NewToolResultError(userMessage(err)), nil
	}

	if !boolArg(req, "save", false) {
		return mcp.NewToolResultText(output), nil
	}

	saved, err := t.notes.Create(ctx, note, output, modeID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("refined, but saving failed: %v\n\n%s", err, output)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n---\nSaved to History! (id %d, %s)", output, saved.ID, t.modes.Label(modeID))), nil
}

func userMessage(err error) string {
	var rerr *refine.Error
	if errors.As(err, &rerr) {
		return rerr.Message
	}
	return refine.MsgRefineFailed
}

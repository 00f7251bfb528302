// Package mcptools exposes note refinement and the note history as MCP tools.
//
// Each tool follows the same pattern:
// - A struct with dependencies injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/YoshitsuguKoike/noterefiner/internal/application/port/input"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/mode"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/note"
)

// NoteStore is the part of the note history the tools use
type NoteStore interface {
	Search(query string) []note.Note
	Create(ctx context.Context, original, refined, mode string) (note.Note, error)
	Delete(ctx context.Context, id int64) error
	Get(id int64) (note.Note, bool)
	Len() int
}

// NewServer creates the MCP server with every tool registered
func NewServer(version string, refiner input.Refiner, notes NoteStore, modes *mode.Registry) *server.MCPServer {
	if modes == nil {
		modes = mode.Builtin()
	}

	s := server.NewMCPServer(
		"noterefiner",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	refineTool := NewRefineTool(refiner, notes, modes)
	s.AddTool(refineTool.Definition(), refineTool.Handle)

	saveTool := NewSaveTool(notes)
	s.AddTool(saveTool.Definition(), saveTool.Handle)

	searchTool := NewSearchTool(notes, modes)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	deleteTool := NewDeleteTool(notes)
	s.AddTool(deleteTool.Definition(), deleteTool.Handle)

	modesTool := NewModesTool(modes)
	s.AddTool(modesTool.Definition(), modesTool.Handle)

	return s
}

// ServeStdio runs s over stdin/stdout until the client disconnects
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

const instructions = `noterefiner turns rough notes into structured professional documents.

Use refine_note with one of the modes from list_modes (tech_support, email,
meeting_minutes, kb_article). Pass save=true, or call save_note afterwards, to
keep the result in the local history. search_notes and delete_note manage
that history.`

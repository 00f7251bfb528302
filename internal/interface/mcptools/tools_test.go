package mcptools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/noterefiner/internal/application/port/output"
	"github.com/YoshitsuguKoike/noterefiner/internal/application/service"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/mode"
	"github.com/YoshitsuguKoike/noterefiner/internal/infrastructure/persistence/memory"
)

// makeReq builds a mcp.CallToolRequest with the given arguments.
func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

type funcGenerator func(ctx context.Context, req output.GenerationRequest) (*output.GenerationResponse, error)

func (f funcGenerator) Generate(ctx context.Context, req output.GenerationRequest) (*output.GenerationResponse, error) {
	return f(ctx, req)
}

func (f funcGenerator) Name() string { return "func" }

func (f funcGenerator) HealthCheck(ctx context.Context) error { return nil }

type fixture struct {
	store   *service.NoteStore
	backend *memory.BlobStore
	refiner *service.RefineService
}

func newFixture(t *testing.T, gen funcGenerator) fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := memory.NewBlobStore()
	store := service.NewNoteStore(backend, service.NoteStoreConfig{Logger: logger})
	store.Load(context.Background())
	return fixture{
		store:   store,
		backend: backend,
		refiner: service.NewRefineService(nil, gen, service.RefineConfig{Timeout: time.Second}, logger),
	}
}

func okGenerator(text string) funcGenerator {
	return func(ctx context.Context, req output.GenerationRequest) (*output.GenerationResponse, error) {
		return &output.GenerationResponse{Text: text}, nil
	}
}

func TestRefineTool_Definition(t *testing.T) {
	f := newFixture(t, okGenerator("x"))
	def := NewRefineTool(f.refiner, f.store, mode.Builtin()).Definition()

	assert.Equal(t, "refine_note", def.Name)
	assert.Contains(t, def.InputSchema.Required, "note")
	assert.Contains(t, def.InputSchema.Properties, "mode")
	assert.Contains(t, def.InputSchema.Properties, "save")
}

func TestRefineTool_Handle(t *testing.T) {
	var prompt string
	f := newFixture(t, func(ctx context.Context, req output.GenerationRequest) (*output.GenerationResponse, error) {
		prompt = req.Prompt
		return &output.GenerationResponse{Text: "Subject: Restored"}, nil
	})
	tool := NewRefineTool(f.refiner, f.store, mode.Builtin())

	t.Run("defaults to tech support", func(t *testing.T) {
		r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"note": "vpn down"}))
		require.NoError(t, err)
		assert.False(t, r.IsError)
		assert.Equal(t, "Subject: Restored", resultText(r))
		assert.True(t, strings.HasPrefix(prompt, mode.Resolve(mode.TechSupport)))
		assert.Equal(t, 0, f.store.Len())
	})

	t.Run("save", func(t *testing.T) {
		r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"note": "vpn down", "mode": "email", "save": true}))
		require.NoError(t, err)
		assert.False(t, r.IsError)
		assert.Contains(t, resultText(r), "Saved to History!")
		assert.Contains(t, resultText(r), "Professional Email")
		require.Equal(t, 1, f.store.Len())
		assert.Equal(t, "email", f.store.All()[0].Mode)
	})

	t.Run("empty note", func(t *testing.T) {
		r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"note": ""}))
		require.NoError(t, err)
		assert.True(t, r.IsError)
		assert.Equal(t, "Note is required.", resultText(r))
	})
}

func TestRefineTool_UpstreamErrorHidesCause(t *testing.T) {
	f := newFixture(t, func(ctx context.Context, req output.GenerationRequest) (*output.GenerationResponse, error) {
		return nil, errors.New("API key not valid")
	})
	tool := NewRefineTool(f.refiner, f.store, mode.Builtin())

	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"note": "n", "save": true}))
	require.NoError(t, err)
	assert.True(t, r.IsError)
	assert.Equal(t, "Failed to refine note.", resultText(r))
	assert.Equal(t, 0, f.backend.Writes())
}

func TestSaveTool_Handle(t *testing.T) {
	f := newFixture(t, okGenerator("x"))
	tool := NewSaveTool(f.store)

	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"original": "o", "refined": "r", "mode": "kb_article"}))
	require.NoError(t, err)
	assert.False(t, r.IsError)
	assert.Contains(t, resultText(r), "Saved to History!")

	r, err = tool.Handle(context.Background(), makeReq(map[string]interface{}{"original": "o"}))
	require.NoError(t, err)
	assert.True(t, r.IsError)

	f.backend.FailWrites = errors.New("disk full")
	r, err = tool.Handle(context.Background(), makeReq(map[string]interface{}{"refined": "r"}))
	require.NoError(t, err)
	assert.True(t, r.IsError)
	assert.Contains(t, resultText(r), "disk full")
	assert.Equal(t, 1, f.store.Len())
}

func TestSearchTool_Handle(t *testing.T) {
	f := newFixture(t, okGenerator("x"))
	ctx := context.Background()
	for i := 0; i < 15; i++ {
		_, err := f.store.Create(ctx, fmt.Sprintf("printer %d", i), "refined", "tech_support")
		require.NoError(t, err)
	}
	_, err := f.store.Create(ctx, "vpn", "VPN Outage", "email")
	require.NoError(t, err)

	tool := NewSearchTool(f.store, mode.Builtin())

	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{"query": "vpn outage"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(r), "Found 1 of 16 notes")
	assert.Contains(t, resultText(r), "Professional Email")

	r, err = tool.Handle(ctx, makeReq(map[string]interface{}{"query": "PRINTER", "limit": float64(5)}))
	require.NoError(t, err)
	assert.Contains(t, resultText(r), "Found 15 of 16 notes")
	assert.Contains(t, resultText(r), "... 10 more")

	r, err = tool.Handle(ctx, makeReq(map[string]interface{}{"query": "nothing"}))
	require.NoError(t, err)
	assert.Equal(t, "No notes found matching your query.", resultText(r))
}

func TestDeleteTool_Handle(t *testing.T) {
	f := newFixture(t, okGenerator("x"))
	ctx := context.Background()
	n, err := f.store.Create(ctx, "o", "r", "email")
	require.NoError(t, err)
	tool := NewDeleteTool(f.store)

	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{"id": float64(n.ID)}))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("Deleted note %d.", n.ID), resultText(r))
	assert.Equal(t, 0, f.store.Len())

	r, err = tool.Handle(ctx, makeReq(map[string]interface{}{"id": fmt.Sprint(n.ID)}))
	require.NoError(t, err)
	assert.False(t, r.IsError)
	assert.Contains(t, resultText(r), "was not in the history")

	r, err = tool.Handle(ctx, makeReq(map[string]interface{}{"id": "abc"}))
	require.NoError(t, err)
	assert.True(t, r.IsError)
}

func TestModesTool_Handle(t *testing.T) {
	r, err := NewModesTool(mode.Builtin()).Handle(context.Background(), makeReq(nil))
	require.NoError(t, err)

	text := resultText(r)
	for _, m := range mode.Builtin().Modes() {
		assert.Contains(t, text, m.ID)
	}
	assert.Contains(t, text, "tech_support: IT Ticket Log (default)")
}

func TestNewServer_RegistersTools(t *testing.T) {
	f := newFixture(t, okGenerator("x"))
	s := NewServer("test", f.refiner, f.store, nil)

	tools := s.ListTools()
	for _, name := range []string{"refine_note", "save_note", "search_notes", "delete_note", "list_modes"} {
		assert.Contains(t, tools, name)
	}
}

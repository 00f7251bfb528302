package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/YoshitsuguKoike/noterefiner/internal/application/port/output"
	"github.com/YoshitsuguKoike/noterefiner/internal/application/service"
	"github.com/YoshitsuguKoike/noterefiner/internal/application/usecase/lifecycle"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/mode"
	"github.com/YoshitsuguKoike/noterefiner/internal/infrastructure/persistence/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubGenerator struct {
	text string
	err  error
	last string
}

func (g *stubGenerator) Generate(ctx context.Context, req output.GenerationRequest) (*output.GenerationResponse, error) {
	g.last = req.Prompt
	if g.err != nil {
		return nil, g.err
	}
	return &output.GenerationResponse{Text: g.text}, nil
}

func (g *stubGenerator) Name() string                          { return "stub" }
func (g *stubGenerator) HealthCheck(ctx context.Context) error { return nil }

type harness struct {
	app     *App
	store   *service.NoteStore
	backend *memory.BlobStore
	gen     *stubGenerator
}

func newHarness(t *testing.T, gen *stubGenerator) harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := memory.NewBlobStore()
	store := service.NewNoteStore(backend, service.NoteStoreConfig{Logger: logger})
	store.Load(context.Background())
	svc := service.NewRefineService(nil, gen, service.RefineConfig{Timeout: time.Second}, logger)
	ctrl := lifecycle.NewController(svc, store, logger)
	return harness{
		app:     NewApp(context.Background(), ctrl, store, mode.Builtin()),
		store:   store,
		backend: backend,
		gen:     gen,
	}
}

// runCommands executes cmd and feeds the resulting messages back into the
// model until nothing is left. Spinner ticks are dropped so the loop ends.
func runCommands(t *testing.T, model tea.Model, cmd tea.Cmd) *App {
	t.Helper()
	app, ok := model.(*App)
	require.True(t, ok)

	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		switch msg := msg.(type) {
		case nil, spinner.TickMsg:
			continue
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		}
		nextModel, nextCmd := app.Update(msg)
		app, ok = nextModel.(*App)
		require.True(t, ok)
		queue = append(queue, nextCmd)
	}
	return app
}

func press(t *testing.T, app *App, key tea.KeyMsg) *App {
	t.Helper()
	model, cmd := app.Update(key)
	if key.Type == tea.KeyRunes {
		// cursor blink commands sleep; typing never needs them
		cmd = nil
	}
	return runCommands(t, model, cmd)
}

func typeText(t *testing.T, app *App, text string) *App {
	t.Helper()
	return press(t, app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestApp_TabCyclesModes(t *testing.T) {
	h := newHarness(t, &stubGenerator{text: "ok"})
	app := h.app
	assert.Equal(t, mode.TechSupport, app.Mode())

	seen := []string{app.Mode()}
	for i := 0; i < 4; i++ {
		app = press(t, app, tea.KeyMsg{Type: tea.KeyTab})
		seen = append(seen, app.Mode())
	}
	assert.Equal(t, []string{mode.TechSupport, mode.Email, mode.MeetingMinutes, mode.KBArticle, mode.TechSupport}, seen)
	assert.Contains(t, app.View(), "IT Ticket Log")
}

func TestApp_GenerateAndSave(t *testing.T) {
	h := newHarness(t, &stubGenerator{text: "**Issue Summary**: printer jam"})
	app := typeText(t, h.app, "printer broke")

	app = press(t, app, tea.KeyMsg{Type: tea.KeyCtrlG})
	assert.False(t, app.generating)
	assert.Equal(t, lifecycle.StateReady, app.controller.State())
	assert.Contains(t, h.gen.last, "USER NOTES:\nprinter broke")
	assert.Contains(t, app.output.View(), "printer jam")

	app = press(t, app, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, lifecycle.MsgSaved, app.Status())
	assert.Contains(t, app.View(), "Saved to History!")
	assert.Equal(t, 1, h.store.Len())
	assert.Empty(t, app.input.Value())
	assert.Equal(t, lifecycle.StateIdle, app.controller.State())
}

func TestApp_GenerateEmptyNote(t *testing.T) {
	gen := &stubGenerator{text: "unused"}
	h := newHarness(t, gen)

	app := press(t, h.app, tea.KeyMsg{Type: tea.KeyCtrlG})
	assert.Equal(t, "Note is required.", app.Status())
	assert.Empty(t, gen.last)
	assert.Equal(t, lifecycle.StateIdle, app.controller.State())
}

func TestApp_GenerateFailureShowsMessage(t *testing.T) {
	h := newHarness(t, &stubGenerator{err: errors.New("API error (500): boom")})
	app := typeText(t, h.app, "note")

	app = press(t, app, tea.KeyMsg{Type: tea.KeyCtrlG})
	assert.Equal(t, lifecycle.MsgGenerateFailed, app.Status())
	assert.NotContains(t, app.View(), "boom")

	app = press(t, app, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, "Generate a note before saving.", app.Status())
	assert.Equal(t, 0, h.store.Len())
}

func TestApp_SecondGenerateWhileBusyIgnored(t *testing.T) {
	h := newHarness(t, &stubGenerator{text: "ok"})
	app := typeText(t, h.app, "note")

	_, first := app.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	require.NotNil(t, first)
	assert.True(t, app.generating)

	_, second := app.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	assert.Nil(t, second)

	app = runCommands(t, app, first)
	assert.False(t, app.generating)
}

func TestApp_ResetClears(t *testing.T) {
	h := newHarness(t, &stubGenerator{text: "refined"})
	app := typeText(t, h.app, "note")
	app = press(t, app, tea.KeyMsg{Type: tea.KeyCtrlG})
	require.Equal(t, lifecycle.StateReady, app.controller.State())

	app = press(t, app, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, lifecycle.StateIdle, app.controller.State())
	assert.Empty(t, app.input.Value())
	assert.Empty(t, strings.TrimSpace(app.output.View()))
}

func TestApp_ResetWhileGeneratingKeepsGuard(t *testing.T) {
	h := newHarness(t, &stubGenerator{text: "ok"})
	app := typeText(t, h.app, "note")

	_, first := app.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	require.NotNil(t, first)

	app = press(t, app, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.True(t, app.generating)
	assert.Empty(t, app.input.Value())

	app = typeText(t, app, "another")
	_, second := app.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	assert.Nil(t, second)

	app = runCommands(t, app, first)
	assert.False(t, app.generating)
}

func TestApp_HistorySearchEditDelete(t *testing.T) {
	h := newHarness(t, &stubGenerator{text: "ok"})
	ctx := context.Background()
	_, err := h.store.Create(ctx, "vpn drops", "VPN outage", mode.TechSupport)
	require.NoError(t, err)
	_, err = h.store.Create(ctx, "lunch plan", "Subject: Lunch", mode.Email)
	require.NoError(t, err)

	app := press(t, h.app, tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.Equal(t, screenHistory, app.screen)
	assert.Len(t, app.results, 2)
	assert.Contains(t, app.View(), "Subject: Lunch")

	app = typeText(t, app, "VPN")
	require.Len(t, app.results, 1)

	app = press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, screenCompose, app.screen)
	assert.Equal(t, "vpn drops", app.input.Value())
	assert.Equal(t, mode.TechSupport, app.Mode())
	assert.Equal(t, lifecycle.StateReady, app.controller.State())

	app = press(t, app, tea.KeyMsg{Type: tea.KeyCtrlO})
	app = press(t, app, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, app.selected)
	app = press(t, app, tea.KeyMsg{Type: tea.KeyCtrlD})
	assert.Equal(t, 1, h.store.Len())
	assert.Equal(t, "Subject: Lunch", h.store.All()[0].Refined)

	app = press(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, screenCompose, app.screen)
}

func TestApp_EmptyHistory(t *testing.T) {
	h := newHarness(t, &stubGenerator{text: "ok"})
	app := press(t, h.app, tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.Contains(t, app.View(), "No notes found.")

	app = press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, screenHistory, app.screen)
}

func TestApp_Quit(t *testing.T) {
	h := newHarness(t, &stubGenerator{text: "ok"})
	_, cmd := h.app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_WindowResize(t *testing.T) {
	h := newHarness(t, &stubGenerator{text: "ok"})
	model, _ := h.app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	app := model.(*App)
	assert.Equal(t, 118, app.output.Width)
	assert.Equal(t, 120, app.width)
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "hello", firstLine("  hello\nworld", 40))
	assert.Equal(t, "abcdefg...", firstLine("abcdefghijklmnop", 10))
}

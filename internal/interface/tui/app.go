// Package tui is the interactive terminal front end: a note editor, a mode
// switcher, the refined output and the saved history in one screen.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/YoshitsuguKoike/noterefiner/internal/application/usecase/lifecycle"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/mode"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/note"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/refine"
)

type screen int

const (
	screenCompose screen = iota
	screenHistory
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	historyRows   = 8
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	modeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Padding(0, 1).Border(lipgloss.RoundedBorder())
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD787"))
	selectStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	outputBorder = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("#888888"))
)

// NoteStore is the part of the history the TUI browses
type NoteStore interface {
	Search(query string) []note.Note
	Delete(ctx context.Context, id int64) error
}

// generatedMsg carries the end of a Generate call back into Update
type generatedMsg struct {
	err error
}

// App is the root bubbletea model
type App struct {
	ctx        context.Context
	controller *lifecycle.Controller
	notes      NoteStore
	modes      *mode.Registry

	screen     screen
	mode       string
	generating bool
	status     string
	failed     bool

	input   textarea.Model
	output  viewport.Model
	spinner spinner.Model
	search  textinput.Model

	results  []note.Note
	selected int

	width    int
	height   int
	renderer *glamour.TermRenderer
}

// NewApp builds the model. ctx bounds every generation started from the UI.
func NewApp(ctx context.Context, controller *lifecycle.Controller, notes NoteStore, modes *mode.Registry) *App {
	if modes == nil {
		modes = mode.Builtin()
	}

	input := textarea.New()
	input.Placeholder = "Type or paste your rough notes..."
	input.ShowLineNumbers = false
	input.Focus()

	search := textinput.New()
	search.Placeholder = "Search history"
	search.Prompt = "/ "

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	a := &App{
		ctx:        ctx,
		controller: controller,
		notes:      notes,
		modes:      modes,
		mode:       mode.SessionDefault,
		input:      input,
		output:     viewport.New(defaultWidth, 0),
		spinner:    spin,
		search:     search,
	}
	a.resize(defaultWidth, defaultHeight)
	return a
}

// Init starts the cursor blinking
func (a *App) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case generatedMsg:
		a.generating = false
		a.showSnapshot(msg.err)
		return a, nil

	case spinner.TickMsg:
		if !a.generating {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.screen == screenHistory {
			return a.updateHistory(msg)
		}
		return a.updateCompose(msg)
	}

	return a, nil
}

func (a *App) updateCompose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		a.mode = a.modes.Next(a.mode)
		return a, nil

	case "ctrl+g":
		return a, a.generate()

	case "ctrl+s":
		a.commit()
		return a, nil

	case "ctrl+r":
		a.controller.Reset()
		a.input.Reset()
		a.output.SetContent("")
		a.setStatus("", false)
		return a, nil

	case "ctrl+o":
		a.openHistory()
		return a, textinput.Blink
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.closeHistory()
		return a, nil

	case "up":
		if a.selected > 0 {
			a.selected--
		}
		return a, nil

	case "down":
		if a.selected < len(a.results)-1 {
			a.selected++
		}
		return a, nil

	case "enter":
		n, ok := a.current()
		if !ok {
			return a, nil
		}
		if err := a.controller.Edit(n.ID); err != nil {
			a.setStatus(err.Error(), true)
			return a, nil
		}
		a.closeHistory()
		a.showSnapshot(nil)
		return a, nil

	case "ctrl+d":
		n, ok := a.current()
		if !ok {
			return a, nil
		}
		if err := a.notes.Delete(a.ctx, n.ID); err != nil {
			a.setStatus(fmt.Sprintf("Delete failed: %v", err), true)
			return a, nil
		}
		a.refreshResults()
		a.setStatus("Deleted.", false)
		return a, nil
	}

	var cmd tea.Cmd
	before := a.search.Value()
	a.search, cmd = a.search.Update(msg)
	if a.search.Value() != before {
		a.refreshResults()
	}
	return a, cmd
}

func (a *App) generate() tea.Cmd {
	if a.generating {
		return nil
	}
	text := a.input.Value()
	if strings.TrimSpace(text) == "" {
		a.setStatus(refine.MsgNoteRequired, true)
		return nil
	}

	a.generating = true
	a.setStatus("", false)
	ctx, controller, modeID := a.ctx, a.controller, a.mode
	run := func() tea.Msg {
		return generatedMsg{err: controller.Generate(ctx, text, modeID)}
	}
	return tea.Batch(a.spinner.Tick, run)
}

func (a *App) commit() {
	if a.generating {
		return
	}
	if _, err := a.controller.Commit(a.ctx); err != nil {
		if errors.Is(err, lifecycle.ErrNothingToCommit) {
			a.setStatus("Generate a note before saving.", true)
			return
		}
		a.setStatus(fmt.Sprintf("Save failed: %v", err), true)
		return
	}
	a.input.Reset()
	a.output.SetContent("")
	a.setStatus(lifecycle.MsgSaved, false)
}

// showSnapshot syncs the view with the controller after a generation or edit
func (a *App) showSnapshot(err error) {
	if errors.Is(err, lifecycle.ErrGenerationInProgress) {
		return
	}
	snap := a.controller.Snapshot()
	switch snap.State {
	case lifecycle.StateReady:
		a.input.SetValue(snap.Input)
		if snap.Mode != "" {
			a.mode = snap.Mode
		}
		a.output.SetContent(a.render(snap.Output))
		a.output.GotoTop()
		a.setStatus("", false)
	case lifecycle.StateFailed:
		a.output.SetContent("")
		a.setStatus(snap.Message, true)
	default:
		if refine.IsValidation(err) {
			a.setStatus(refine.MsgNoteRequired, true)
		}
	}
}

func (a *App) openHistory() {
	a.screen = screenHistory
	a.input.Blur()
	a.search.Reset()
	a.search.Focus()
	a.refreshResults()
}

func (a *App) closeHistory() {
	a.screen = screenCompose
	a.search.Blur()
	a.input.Focus()
}

func (a *App) refreshResults() {
	a.results = a.notes.Search(a.search.Value())
	if a.selected >= len(a.results) {
		a.selected = len(a.results) - 1
	}
	if a.selected < 0 {
		a.selected = 0
	}
}

func (a *App) current() (note.Note, bool) {
	if a.selected < 0 || a.selected >= len(a.results) {
		return note.Note{}, false
	}
	return a.results[a.selected], true
}

func (a *App) setStatus(msg string, failed bool) {
	a.status = msg
	a.failed = failed
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height

	inner := width - 2
	if inner < 20 {
		inner = 20
	}
	inputHeight := height / 3
	if inputHeight < 3 {
		inputHeight = 3
	}
	outputHeight := height - inputHeight - 9
	if outputHeight < 3 {
		outputHeight = 3
	}

	a.input.SetWidth(inner)
	a.input.SetHeight(inputHeight)
	a.output.Width = inner
	a.output.Height = outputHeight
	a.search.Width = inner - 2

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(inner-2))
	if err == nil {
		a.renderer = r
	}
	if snap := a.controller.Snapshot(); snap.State == lifecycle.StateReady {
		a.output.SetContent(a.render(snap.Output))
	}
}

func (a *App) render(md string) string {
	if a.renderer == nil {
		return md
	}
	out, err := a.renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// Mode returns the mode the next generation will use
func (a *App) Mode() string { return a.mode }

// Status returns the current status line text
func (a *App) Status() string { return a.status }

// View renders the current screen
func (a *App) View() string {
	if a.screen == screenHistory {
		return a.viewHistory()
	}
	return a.viewCompose()
}

func (a *App) viewCompose() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Note Refiner"))
	b.WriteString("  ")
	b.WriteString(modeStyle.Render(a.modes.Label(a.mode)))
	b.WriteString("\n")
	b.WriteString(a.input.View())
	b.WriteString("\n")

	switch {
	case a.generating:
		b.WriteString(a.spinner.View() + " Refining...")
	case a.status != "" && a.failed:
		b.WriteString(errorStyle.Render(a.status))
	case a.status != "":
		b.WriteString(statusStyle.Render("✓ " + a.status))
	}
	b.WriteString("\n")

	b.WriteString(outputBorder.Render(a.output.View()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab: mode • ctrl+g: generate • ctrl+s: save • ctrl+r: clear • ctrl+o: history • ctrl+c: quit"))
	return b.String()
}

func (a *App) viewHistory() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("History"))
	b.WriteString("\n")
	b.WriteString(a.search.View())
	b.WriteString("\n\n")

	if len(a.results) == 0 {
		b.WriteString(helpStyle.Render("No notes found."))
		b.WriteString("\n")
	}

	start := 0
	if a.selected >= historyRows {
		start = a.selected - historyRows + 1
	}
	for i := start; i < len(a.results) && i < start+historyRows; i++ {
		n := a.results[i]
		line := fmt.Sprintf("%s  %-16s %s", n.CreatedAt, a.modes.Label(n.Mode), firstLine(n.Refined, a.width-32))
		if i == a.selected {
			b.WriteString(selectStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if a.status != "" {
		style := statusStyle
		if a.failed {
			style = errorStyle
		}
		b.WriteString(style.Render(a.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("↑/↓: select • enter: edit • ctrl+d: delete • esc: back"))
	return b.String()
}

func firstLine(s string, max int) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if max < 10 {
		max = 10
	}
	r := []rune(s)
	if len(r) > max {
		return string(r[:max-3]) + "..."
	}
	return s
}

// Run starts the program on the terminal and blocks until the user quits
func Run(ctx context.Context, app *App) error {
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

package presenter

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/YoshitsuguKoike/noterefiner/internal/application/dto"
	"github.com/YoshitsuguKoike/noterefiner/internal/application/port/output"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/mode"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/note"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/refine"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

// MarkdownPresenter implements output.Presenter for terminals. Refined
// output is markdown and is rendered with glamour; plain mode prints it as is.
type MarkdownPresenter struct {
	output   io.Writer
	renderer *glamour.TermRenderer // nil in plain mode
}

// NewMarkdownPresenter creates a terminal presenter. With styled false the
// refined markdown is written verbatim, which keeps pipes clean.
func NewMarkdownPresenter(w io.Writer, styled bool, wrap int) output.Presenter {
	p := &MarkdownPresenter{output: w}
	if styled {
		if wrap <= 0 {
			wrap = 80
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
		if err == nil {
			p.renderer = r
		}
	}
	return p
}

// PresentSuccess presents a successful result
func (p *MarkdownPresenter) PresentSuccess(message string, data interface{}) error {
	var err error
	switch v := data.(type) {
	case *dto.RefineResult:
		err = p.presentRefined(v)
	case *dto.NoteList:
		err = p.presentNoteList(v)
	case note.Note:
		err = p.presentNote(v)
	case []mode.Mode:
		p.presentModes(v)
	case nil:
	default:
		fmt.Fprintf(p.output, "%+v\n", data)
	}
	if err != nil {
		return err
	}

	if message != "" {
		fmt.Fprintf(p.output, "✓ %s\n", message)
	}
	return nil
}

// PresentError presents an error. Refinement errors show only their user message.
func (p *MarkdownPresenter) PresentError(err error) error {
	msg := err.Error()
	var rerr *refine.Error
	if errors.As(err, &rerr) {
		msg = rerr.Message
	}
	fmt.Fprintln(p.output, errorStyle.Render("✗ Error: "+msg))
	return err
}

func (p *MarkdownPresenter) presentRefined(r *dto.RefineResult) error {
	fmt.Fprintln(p.output, headerStyle.Render(labelOrID(r.Label, r.Mode)))
	return p.renderMarkdown(r.Output)
}

func (p *MarkdownPresenter) presentNoteList(list *dto.NoteList) error {
	if len(list.Notes) == 0 {
		if list.Query != "" {
			fmt.Fprintf(p.output, "No notes match %q.\n", list.Query)
		} else {
			fmt.Fprintln(p.output, "No saved notes.")
		}
		return nil
	}

	for _, n := range list.Notes {
		fmt.Fprintf(p.output, "%s  %s  %s\n",
			headerStyle.Render(fmt.Sprintf("%d", n.ID)),
			dimStyle.Render(fmt.Sprintf("%-10s %-16s", n.CreatedAt, mode.Builtin().Label(n.Mode))),
			preview(n.Original, 60),
		)
	}
	if list.Query != "" {
		fmt.Fprintln(p.output, dimStyle.Render(fmt.Sprintf("%d of %d notes", len(list.Notes), list.Total)))
	}
	return nil
}

func (p *MarkdownPresenter) presentNote(n note.Note) error {
	fmt.Fprintln(p.output, headerStyle.Render(fmt.Sprintf("Note %d", n.ID)))
	fmt.Fprintln(p.output, dimStyle.Render(fmt.Sprintf("%s · %s", n.CreatedAt, mode.Builtin().Label(n.Mode))))
	fmt.Fprintln(p.output)
	fmt.Fprintln(p.output, headerStyle.Render("Original"))
	fmt.Fprintln(p.output, n.Original)
	fmt.Fprintln(p.output)
	fmt.Fprintln(p.output, headerStyle.Render("Refined"))
	return p.renderMarkdown(n.Refined)
}

func (p *MarkdownPresenter) presentModes(modes []mode.Mode) {
	for _, m := range modes {
		fmt.Fprintf(p.output, "%-16s %s\n", m.ID, dimStyle.Render(m.Label))
	}
}

func (p *MarkdownPresenter) renderMarkdown(md string) error {
	if p.renderer == nil {
		_, err := fmt.Fprintln(p.output, strings.TrimRight(md, "\n"))
		return err
	}
	rendered, err := p.renderer.Render(md)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(p.output, rendered)
	return err
}

func labelOrID(label, id string) string {
	if label != "" {
		return label
	}
	return id
}

// preview returns the first line of s cut to max runes
func preview(s string, max int) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	runes := []rune(line)
	if len(runes) > max {
		return string(runes[:max-1]) + "…"
	}
	return line
}

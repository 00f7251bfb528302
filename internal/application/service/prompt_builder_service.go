package service

import (
	"strings"

	"github.com/YoshitsuguKoike/noterefiner/internal/domain/mode"
)

// NotesSeparator sits between the mode template and the user's note.
const NotesSeparator = "\n\nUSER NOTES:\n"

// PromptBuilderService handles building prompts for the generator
type PromptBuilderService struct {
	modes *mode.Registry
}

// NewPromptBuilderService creates a new prompt builder service
func NewPromptBuilderService(modes *mode.Registry) *PromptBuilderService {
	if modes == nil {
		modes = mode.Builtin()
	}
	return &PromptBuilderService{modes: modes}
}

// Build resolves the template for modeID and appends the note verbatim.
func (s *PromptBuilderService) Build(modeID, note string) string {
	template := s.modes.Resolve(modeID)

	var sb strings.Builder
	sb.Grow(len(template) + len(NotesSeparator) + len(note))
	sb.WriteString(template)
	sb.WriteString(NotesSeparator)
	sb.WriteString(note)
	return sb.String()
}

// Modes returns the registry the builder resolves against
func (s *PromptBuilderService) Modes() *mode.Registry {
	return s.modes
}

package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/YoshitsuguKoike/noterefiner/internal/domain/mode"
)

func TestPromptBuilderService_Build(t *testing.T) {
	builder := NewPromptBuilderService(nil)
	modes := mode.Builtin()

	prompt := builder.Build(mode.MeetingMinutes, "  a\nb  ")
	assert.True(t, strings.HasPrefix(prompt, modes.Resolve(mode.MeetingMinutes)))
	assert.True(t, strings.HasSuffix(prompt, NotesSeparator+"  a\nb  "), "note is appended verbatim")
	assert.Equal(t, modes, builder.Modes())
}

func TestPromptBuilderService_UnknownMode(t *testing.T) {
	builder := NewPromptBuilderService(mode.Builtin())

	prompt := builder.Build("limerick", "x")
	assert.Equal(t, builder.Modes().Resolve("")+NotesSeparator+"x", prompt)
}

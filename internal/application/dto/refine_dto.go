package dto

import "github.com/YoshitsuguKoike/noterefiner/internal/domain/note"

// RefineResult is the outcome of one refine command for presentation
type RefineResult struct {
	Mode   string     `json:"mode"`
	Label  string     `json:"label"`
	Input  string     `json:"input"`
	Output string     `json:"output"`
	Saved  *note.Note `json:"saved,omitempty"` // set when the result was committed to history
}

// NoteList is a (possibly filtered) view of the history
type NoteList struct {
	Query string      `json:"query,omitempty"`
	Notes []note.Note `json:"notes"`
	Total int         `json:"total"` // size of the whole history
}

// Package mode holds the closed set of refinement modes and the instruction
// template each one selects. The table is decoded from the embedded
// templates.yaml; adding a mode means adding an entry there.
package mode

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Mode identifiers
const (
	TechSupport    = "tech_support"
	Email          = "email"
	MeetingMinutes = "meeting_minutes"
	KBArticle      = "kb_article"

	// DefaultID names the fallback arm. It is not part of the closed set.
	DefaultID = "default"
)

// SessionDefault is the mode a new session starts in.
const SessionDefault = TechSupport

// Mode is one row of the registry
type Mode struct {
	ID       string `yaml:"id" json:"id"`
	Label    string `yaml:"label" json:"label"`
	Template string `yaml:"template" json:"template"`
}

type table struct {
	Default string `yaml:"default"`
	Modes   []Mode `yaml:"modes"`
}

//go:embed templates.yaml
var templatesYAML []byte

// Registry maps mode identifiers to templates. It is immutable once built.
type Registry struct {
	fallback Mode
	ordered  []Mode
	byID     map[string]Mode
}

// Parse builds a Registry from a YAML document shaped like templates.yaml.
func Parse(data []byte) (*Registry, error) {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode mode table: %w", err)
	}
	if t.Default == "" {
		return nil, fmt.Errorf("mode table has no default template")
	}

	r := &Registry{
		fallback: Mode{ID: DefaultID, Label: "General", Template: t.Default},
		byID:     make(map[string]Mode, len(t.Modes)),
	}
	for _, m := range t.Modes {
		if m.ID == "" || m.Template == "" {
			return nil, fmt.Errorf("mode entry %q is missing id or template", m.ID)
		}
		if m.ID == DefaultID {
			return nil, fmt.Errorf("mode id %q is reserved", DefaultID)
		}
		if _, dup := r.byID[m.ID]; dup {
			return nil, fmt.Errorf("duplicate mode id %q", m.ID)
		}
		r.byID[m.ID] = m
		r.ordered = append(r.ordered, m)
	}
	return r, nil
}

var builtin = mustParse(templatesYAML)

func mustParse(data []byte) *Registry {
	r, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return r
}

// Builtin returns the registry compiled into the binary.
func Builtin() *Registry {
	return builtin
}

// Resolve returns the template for id. Unknown or empty ids get the default
// template; it never fails.
func (r *Registry) Resolve(id string) string {
	if m, ok := r.byID[id]; ok {
		return m.Template
	}
	return r.fallback.Template
}

// Lookup returns the registry row for id, or false for ids outside the closed set.
func (r *Registry) Lookup(id string) (Mode, bool) {
	m, ok := r.byID[id]
	return m, ok
}

// IsKnown reports whether id belongs to the closed set
func (r *Registry) IsKnown(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// Modes lists the closed set in table order.
func (r *Registry) Modes() []Mode {
	out := make([]Mode, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Default returns the fallback row.
func (r *Registry) Default() Mode {
	return r.fallback
}

// Label returns a display name for id, falling back to the raw id.
func (r *Registry) Label(id string) string {
	if m, ok := r.byID[id]; ok {
		return m.Label
	}
	if id == "" {
		return r.fallback.Label
	}
	return id
}

// Next returns the mode after id in table order, wrapping around. Used by
// interactive front ends to cycle modes.
func (r *Registry) Next(id string) string {
	if len(r.ordered) == 0 {
		return DefaultID
	}
	for i, m := range r.ordered {
		if m.ID == id {
			return r.ordered[(i+1)%len(r.ordered)].ID
		}
	}
	return r.ordered[0].ID
}

// Resolve looks id up in the builtin registry.
func Resolve(id string) string {
	return builtin.Resolve(id)
}

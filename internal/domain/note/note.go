// Package note defines the persisted history record.
package note

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Note pairs a raw input with its generated refinement. Notes are immutable
// once created; the store only ever adds or removes whole records.
type Note struct {
	ID        int64  `json:"id"`
	CreatedAt string `json:"createdAt"`
	Original  string `json:"original"`
	Refined   string `json:"refined"`
	Mode      string `json:"mode"`
}

// wireNote accepts the field names older clients wrote (date, type) in
// addition to the current ones.
type wireNote struct {
	ID        *int64 `json:"id"`
	CreatedAt string `json:"createdAt"`
	Date      string `json:"date"`
	Original  string `json:"original"`
	Refined   string `json:"refined"`
	Mode      string `json:"mode"`
	Type      string `json:"type"`
}

// UnmarshalJSON tolerates records missing newer fields.
func (n *Note) UnmarshalJSON(data []byte) error {
	var w wireNote
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.ID == nil {
		return fmt.Errorf("note record has no id")
	}
	n.ID = *w.ID
	n.CreatedAt = w.CreatedAt
	if n.CreatedAt == "" {
		n.CreatedAt = w.Date
	}
	n.Original = w.Original
	n.Refined = w.Refined
	n.Mode = w.Mode
	if n.Mode == "" {
		n.Mode = w.Type
	}
	return nil
}

// Decode parses a persisted collection and restores newest-first order.
func Decode(blob []byte) ([]Note, error) {
	var notes []Note
	if err := json.Unmarshal(blob, &notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	SortNewestFirst(notes)
	return notes, nil
}

// Encode serializes the whole collection as one JSON array.
func Encode(notes []Note) ([]byte, error) {
	if notes == nil {
		notes = []Note{}
	}
	b, err := json.Marshal(notes)
	if err != nil {
		return nil, fmt.Errorf("encode notes: %w", err)
	}
	return b, nil
}

// SortNewestFirst orders notes by descending id, keeping the relative order
// of equal ids.
func SortNewestFirst(notes []Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].ID > notes[j].ID
	})
}

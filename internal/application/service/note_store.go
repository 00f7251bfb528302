package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"

	"github.com/YoshitsuguKoike/noterefiner/internal/domain/note"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/repository"
)

// Defaults for NoteStore
const (
	DefaultNotesKey   = "my_tech_notes"
	DefaultDateLayout = "1/2/2006"
)

// NoteStoreConfig holds configuration for NoteStore
type NoteStoreConfig struct {
	Key        string           // Key the collection is stored under
	DateLayout string           // time layout for Note.CreatedAt
	Now        func() time.Time // Clock, overridable in tests
	Logger     *slog.Logger
}

// NoteStore owns the ordered, persisted history of refinements. It is the
// only reader and writer of its key in the backing BlobStore. Every mutation
// rewrites the whole collection in one Write.
type NoteStore struct {
	mu      sync.Mutex
	backend repository.BlobStore
	key     string
	layout  string
	now     func() time.Time
	logger  *slog.Logger

	notes  []note.Note // newest first
	lastID int64
}

// NewNoteStore creates a store over backend. Call Load to read existing history.
func NewNoteStore(backend repository.BlobStore, config NoteStoreConfig) *NoteStore {
	if config.Key == "" {
		config.Key = DefaultNotesKey
	}
	if config.DateLayout == "" {
		config.DateLayout = DefaultDateLayout
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &NoteStore{
		backend: backend,
		key:     config.Key,
		layout:  config.DateLayout,
		now:     config.Now,
		logger:  config.Logger,
	}
}

// Load re-reads the persisted collection. A missing, unreadable or malformed
// blob yields an empty history; the problem is logged and never returned.
func (s *NoteStore) Load(ctx context.Context) []note.Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes = s.read(ctx)
	for _, n := range s.notes {
		if n.ID > s.lastID {
			s.lastID = n.ID
		}
	}
	return s.snapshot(s.notes)
}

func (s *NoteStore) read(ctx context.Context) []note.Note {
	blob, err := s.backend.Read(ctx, s.key)
	if err != nil {
		if !errors.Is(err, repository.ErrBlobNotFound) {
			s.logger.Warn("note history unreadable, starting empty",
				slog.String("key", s.key), slog.Any("error", err))
		}
		return nil
	}

	notes, err := note.Decode(blob)
	if err != nil {
		s.logger.Warn("note history corrupted, starting empty",
			slog.String("key", s.key), slog.Int("bytes", len(blob)), slog.Any("error", err))
		return nil
	}
	return notes
}

// Create records a new note at the head of the history and persists the
// collection. If the write fails the history is left unchanged.
func (s *NoteStore) Create(ctx context.Context, original, refined, modeID string) (note.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}

	n := note.Note{
		ID:        id,
		CreatedAt: now.Format(s.layout),
		Original:  original,
		Refined:   refined,
		Mode:      modeID,
	}

	updated := make([]note.Note, 0, len(s.notes)+1)
	updated = append(updated, n)
	updated = append(updated, s.notes...)

	if err := s.persist(ctx, updated); err != nil {
		return note.Note{}, err
	}

	s.notes = updated
	s.lastID = id
	s.logger.Debug("note saved", slog.Int64("id", id), slog.String("mode", modeID), slog.Int("total", len(updated)))
	return n, nil
}

// Delete removes the note with id. Deleting an unknown id is a no-op.
func (s *NoteStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, n := range s.notes {
		if n.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	updated := make([]note.Note, 0, len(s.notes)-1)
	updated = append(updated, s.notes[:idx]...)
	updated = append(updated, s.notes[idx+1:]...)

	if err := s.persist(ctx, updated); err != nil {
		return err
	}

	s.notes = updated
	s.logger.Debug("note deleted", slog.Int64("id", id), slog.Int("total", len(updated)))
	return nil
}

// Search returns the notes whose original or refined text contains query,
// ignoring case. An empty query returns everything. Order is preserved.
func (s *NoteStore) Search(query string) []note.Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	if query == "" {
		return s.snapshot(s.notes)
	}

	fold := cases.Fold()
	q := fold.String(query)

	matches := make([]note.Note, 0)
	for _, n := range s.notes {
		if strings.Contains(fold.String(n.Original), q) || strings.Contains(fold.String(n.Refined), q) {
			matches = append(matches, n)
		}
	}
	return matches
}

// All returns the full history, newest first
func (s *NoteStore) All() []note.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(s.notes)
}

// Get returns the note with id, for reloading into an editing session.
func (s *NoteStore) Get(id int64) (note.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notes {
		if n.ID == id {
			return n, true
		}
	}
	return note.Note{}, false
}

// Len returns the number of notes held
func (s *NoteStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notes)
}

func (s *NoteStore) persist(ctx context.Context, notes []note.Note) error {
	blob, err := note.Encode(notes)
	if err != nil {
		return err
	}
	if err := s.backend.Write(ctx, s.key, blob); err != nil {
		return fmt.Errorf("persist notes: %w", err)
	}
	return nil
}

func (s *NoteStore) snapshot(notes []note.Note) []note.Note {
	out := make([]note.Note, len(notes))
	copy(out, notes)
	return out
}

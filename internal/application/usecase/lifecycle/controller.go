// Package lifecycle drives one user-initiated refinement from input to saved
// history entry and exposes where it stands to whatever front end is attached.
package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/YoshitsuguKoike/noterefiner/internal/application/port/input"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/note"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/refine"
)

// State of the controller
type State int

const (
	StateIdle State = iota
	StateGenerating
	StateReady
	StateFailed
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGenerating:
		return "generating"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Messages shown to the end user when a generation fails
const (
	MsgGenerateFailed  = "Error generating note. Please check your connection."
	MsgGenerateTimeout = "The request timed out. Please try again."
	MsgSaved           = "Saved to History!"
)

var (
	// ErrGenerationInProgress rejects a second Generate while one is running
	ErrGenerationInProgress = errors.New("a generation is already in progress")
	// ErrNothingToCommit is returned by Commit outside the Ready state
	ErrNothingToCommit = errors.New("no refined output to save")
	// ErrNoteNotFound is returned by Edit for an unknown history id
	ErrNoteNotFound = errors.New("note not found")
)

// NoteRepository is the part of the note store the controller needs
type NoteRepository interface {
	Create(ctx context.Context, original, refined, mode string) (note.Note, error)
	Get(id int64) (note.Note, bool)
}

// Snapshot is a copy of the controller's state for presentation
type Snapshot struct {
	State   State
	Input   string
	Mode    string
	Output  string // set in Ready
	Message string // set in Failed
	Err     error  // set in Failed
}

// Controller runs at most one generation at a time. Generation and saving are
// separate steps: output only reaches the note store on Commit.
type Controller struct {
	mu      sync.Mutex
	refiner input.Refiner
	notes   NoteRepository
	logger  *slog.Logger

	state   State
	input   string
	mode    string
	output  string
	message string
	err     error
	// generation counts Generate/Reset calls so a result arriving after a
	// Reset is dropped
	generation uint64
	// inFlight stays set until Refine returns, even across a Reset
	inFlight bool
}

// NewController creates a controller in the Idle state
func NewController(refiner input.Refiner, notes NoteRepository, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		refiner: refiner,
		notes:   notes,
		logger:  logger,
		state:   StateIdle,
	}
}

// Generate refines text in the given mode and blocks until the refiner
// answers. An empty note is rejected with a validation error and leaves the
// state untouched. Calling Generate from Ready discards the previous output.
func (c *Controller) Generate(ctx context.Context, text, modeID string) error {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ErrGenerationInProgress
	}
	if strings.TrimSpace(text) == "" {
		c.mu.Unlock()
		return refine.Validation(refine.MsgNoteRequired)
	}
	c.generation++
	gen := c.generation
	c.inFlight = true
	c.state = StateGenerating
	c.input = text
	c.mode = modeID
	c.output = ""
	c.message = ""
	c.err = nil
	c.mu.Unlock()

	c.logger.Debug("generation started", slog.String("mode", modeID), slog.Int("chars", len(text)))
	out, err := c.refiner.Refine(ctx, text, modeID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	if gen != c.generation {
		c.logger.Debug("generation result dropped after reset")
		return err
	}
	if err != nil {
		c.state = StateFailed
		c.message = userMessage(err)
		c.err = err
		c.logger.Warn("generation failed", slog.String("kind", string(refine.KindOf(err))), slog.Any("error", err))
		return err
	}
	c.state = StateReady
	c.output = out
	return nil
}

// Commit saves the current output to the note store and returns to Idle.
// If the store fails the controller stays in Ready so the save can be retried.
func (c *Controller) Commit(ctx context.Context) (note.Note, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateReady {
		return note.Note{}, ErrNothingToCommit
	}

	n, err := c.notes.Create(ctx, c.input, c.output, c.mode)
	if err != nil {
		return note.Note{}, err
	}

	c.logger.Info("note committed", slog.Int64("id", n.ID), slog.String("mode", n.Mode))
	c.clear()
	return n, nil
}

// Edit loads a saved note back into the session as if it had just been
// generated, so it can be reviewed, regenerated or saved again.
func (c *Controller) Edit(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateGenerating {
		return ErrGenerationInProgress
	}
	n, ok := c.notes.Get(id)
	if !ok {
		return ErrNoteNotFound
	}
	c.state = StateReady
	c.input = n.Original
	c.output = n.Refined
	c.mode = n.Mode
	c.message = ""
	c.err = nil
	return nil
}

// Reset returns to Idle. A generation still running is abandoned and its
// result ignored, but Generate keeps returning ErrGenerationInProgress until
// that call has returned.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.clear()
}

// Busy reports whether a refiner call is still outstanding
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// State returns the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:   c.state,
		Input:   c.input,
		Mode:    c.mode,
		Output:  c.output,
		Message: c.message,
		Err:     c.err,
	}
}

func (c *Controller) clear() {
	c.state = StateIdle
	c.input = ""
	c.mode = ""
	c.output = ""
	c.message = ""
	c.err = nil
}

func userMessage(err error) string {
	switch refine.KindOf(err) {
	case refine.KindTimeout:
		return MsgGenerateTimeout
	case refine.KindValidation:
		return refine.MsgNoteRequired
	default:
		return MsgGenerateFailed
	}
}

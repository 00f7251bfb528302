package output

// Presenter defines the interface for presenting output to users
// Different implementations can format output for terminals or JSON
type Presenter interface {
	// PresentSuccess presents a successful result. data is one of
	// *dto.RefineResult, *dto.NoteList, note.Note or []mode.Mode.
	PresentSuccess(message string, data interface{}) error

	// PresentError presents an error
	PresentError(err error) error
}

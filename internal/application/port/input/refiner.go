package input

import "context"

// Refiner turns a rough note into structured text for a mode. Implemented by
// the local refine service and by the remote refine endpoint client.
// Failures are *refine.Error values.
type Refiner interface {
	Refine(ctx context.Context, note, mode string) (string, error)
}

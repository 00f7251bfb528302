package presenter

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/YoshitsuguKoike/noterefiner/internal/application/port/output"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/refine"
)

// JSONPresenter implements output.Presenter for JSON output
// Formats all output as JSON for programmatic consumption
type JSONPresenter struct {
	output io.Writer
}

// NewJSONPresenter creates a new JSON presenter
func NewJSONPresenter(output io.Writer) output.Presenter {
	return &JSONPresenter{output: output}
}

// PresentSuccess presents a successful result as JSON
func (p *JSONPresenter) PresentSuccess(message string, data interface{}) error {
	result := map[string]interface{}{
		"success": true,
		"message": message,
		"data":    data,
	}
	return p.encode(result)
}

// PresentError presents an error as JSON. Refinement errors carry their kind.
func (p *JSONPresenter) PresentError(err error) error {
	result := map[string]interface{}{
		"success": false,
		"error":   err.Error(),
	}
	var rerr *refine.Error
	if errors.As(err, &rerr) {
		result["error"] = rerr.Message
		result["kind"] = string(rerr.Kind)
	}
	return p.encode(result)
}

func (p *JSONPresenter) encode(v interface{}) error {
	enc := json.NewEncoder(p.output)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package app

import (
	"path/filepath"
)

// Paths holds the resolved locations under the noterefiner home
type Paths struct {
	Home     string // .noterefiner directory
	Settings string // .noterefiner/config.yaml
	Var      string // .noterefiner/var (file store)
	Database string // .noterefiner/notes.db (sqlite store)
}

// ResolvePaths returns all paths under home
func ResolvePaths(home string) Paths {
	return Paths{
		Home:     home,
		Settings: filepath.Join(home, "config.yaml"),
		Var:      filepath.Join(home, "var"),
		Database: filepath.Join(home, "notes.db"),
	}
}

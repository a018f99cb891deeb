// Package guides downloads and unpacks the TRaSH-Guides metadata archive
// into a short-lived workspace so instance configurations can be rendered
// against it.
package guides

import "os"

// Workspace is a temporary directory holding the unpacked guides metadata
// for a single validation run.
type Workspace struct {
	dir string
}

// NewWorkspace creates a fresh temporary directory.
func NewWorkspace() (*Workspace, error) {
	dir, err := os.MkdirTemp("", "declarr-guides-*")
	if err != nil {
		return nil, err
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace root directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Release removes the workspace and everything in it. Releasing an already
// released workspace is a no-op.
func (w *Workspace) Release() error {
	return os.RemoveAll(w.dir)
}

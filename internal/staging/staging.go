// Package staging writes a set of output files so that either all of them
// appear or none do.
package staging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/objconv/internal/logger"
)

// tempSuffix is appended to staged file names until Commit.
const tempSuffix = ".partial"

// Files collects staged writes. The zero value is not usable; use New.
type Files struct {
	paths  []string
	staged map[string]bool
}

// New returns an empty set of staged files.
func New() *Files {
	return &Files{staged: make(map[string]bool)}
}

// WriteFile stages data for path. The final file only appears on Commit.
func (f *Files) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path+tempSuffix, data, 0o644); err != nil {
		return err
	}
	if !f.staged[path] {
		f.staged[path] = true
		f.paths = append(f.paths, path)
	}
	return nil
}

// Paths returns the staged paths in the order they were first written.
func (f *Files) Paths() []string {
	return append([]string(nil), f.paths...)
}

// Commit moves every staged file into place. When a rename fails the
// files already moved and those still staged are removed.
func (f *Files) Commit() error {
	for i, path := range f.paths {
		if err := os.Rename(path+tempSuffix, path); err != nil {
			for _, done := range f.paths[:i] {
				os.Remove(done)
			}
			f.paths = f.paths[i:]
			return multierr.Append(fmt.Errorf("committing %s: %w", path, err), f.Abort())
		}
	}
	logger.Debug("output committed", zap.Int("files", len(f.paths)))
	f.reset()
	return nil
}

// Abort removes every staged file.
func (f *Files) Abort() error {
	var err error
	for _, path := range f.paths {
		if rmErr := os.Remove(path + tempSuffix); rmErr != nil && !os.IsNotExist(rmErr) {
			err = multierr.Append(err, rmErr)
		}
	}
	f.reset()
	return err
}

func (f *Files) reset() {
	f.paths = nil
	f.staged = make(map[string]bool)
}

// Package local persists uploaded papers on the local filesystem.
package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
)

// Ensure FileStore implements the interface.
var _ driven.FileStore = (*FileStore)(nil)

// FileStore writes documents into a single upload directory.
type FileStore struct {
	dir string
}

// New creates a file store rooted at dir, creating it if needed.
func New(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: upload directory is empty", domain.ErrInvalidConfig)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the upload directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Persist writes data to <dir>/<name> and returns the file path.
// The file appears atomically so a concurrent reader never sees a partial PDF.
func (s *FileStore) Persist(_ context.Context, name string, data []byte) (string, error) {
	if name == "" || filepath.Base(name) != name || name == "." || name == ".." {
		return "", fmt.Errorf("%w: invalid file name %q", domain.ErrInvalidInput, name)
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing upload: %w", err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("moving upload into place: %w", err)
	}
	return path, nil
}

// Remove deletes a persisted file. Missing files are ignored.
func (s *FileStore) Remove(_ context.Context, locator string) error {
	if locator == "" {
		return nil
	}
	if err := os.Remove(locator); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing upload: %w", err)
	}
	return nil
}

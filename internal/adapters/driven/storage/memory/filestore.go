package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
)

// Ensure FileStore implements the interface.
var _ driven.FileStore = (*FileStore)(nil)

// locatorPrefix marks locators handed out by the memory file store.
const locatorPrefix = "memory://"

// FileStore keeps uploaded documents in memory.
type FileStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewFileStore creates a new in-memory file store.
func NewFileStore() *FileStore {
	return &FileStore{
		files: make(map[string][]byte),
	}
}

// Persist stores a copy of data and returns its locator.
func (s *FileStore) Persist(_ context.Context, name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	locator := locatorPrefix + name
	s.files[locator] = append([]byte(nil), data...)
	return locator, nil
}

// Remove deletes a stored document.
func (s *FileStore) Remove(_ context.Context, locator string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, locator)
	return nil
}

// Read returns a stored document.
func (s *FileStore) Read(locator string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[locator]
	return data, ok
}

// Len returns the number of stored documents.
func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

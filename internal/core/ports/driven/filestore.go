package driven

import "context"

// FileStore persists uploaded documents.
type FileStore interface {
	// Persist writes the bytes under the given name and returns a stable locator.
	Persist(ctx context.Context, name string, data []byte) (string, error)

	// Remove deletes a previously persisted document. Missing files are ignored.
	Remove(ctx context.Context, locator string) error
}

package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/papermentor/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
// Collections are maps from record id to record, searched by brute force.
type VectorStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]driven.VectorRecord
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		collections: make(map[string]map[string]driven.VectorRecord),
	}
}

// EnsureCollection creates the collection if it does not exist.
func (s *VectorStore) EnsureCollection(_ context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collection]; !ok {
		s.collections[collection] = make(map[string]driven.VectorRecord)
	}
	return nil
}

// HasCollection reports whether the collection exists.
func (s *VectorStore) HasCollection(_ context.Context, collection string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[collection]
	return ok, nil
}

// Upsert writes records, replacing any with the same id.
func (s *VectorStore) Upsert(_ context.Context, collection string, records []driven.VectorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]driven.VectorRecord)
		s.collections[collection] = coll
	}

	for _, r := range records {
		r.Embedding = append([]float32(nil), r.Embedding...)
		coll[r.ID] = r
	}
	return nil
}

// Query returns up to k records nearest to the embedding.
func (s *VectorStore) Query(
	_ context.Context, collection string, embedding []float32, k int,
) ([]driven.VectorMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, ok := s.collections[collection]
	if !ok || k <= 0 {
		return []driven.VectorMatch{}, nil
	}

	nearest := vecmath.NewNearest[driven.VectorRecord](k)
	for _, r := range coll {
		nearest.Offer(r, vecmath.SquaredL2(embedding, r.Embedding))
	}

	scored := nearest.Sorted()
	matches := make([]driven.VectorMatch, len(scored))
	for i, sc := range scored {
		matches[i] = driven.VectorMatch{
			ID:       sc.Item.ID,
			Text:     sc.Item.Text,
			Metadata: sc.Item.Metadata,
			Distance: sc.Distance,
		}
	}
	return matches, nil
}

// Count returns the number of records in the collection.
func (s *VectorStore) Count(_ context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection]), nil
}

// DeleteCollection drops the collection.
func (s *VectorStore) DeleteCollection(_ context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, collection)
	return nil
}

// Close releases resources (no-op for memory store).
func (s *VectorStore) Close() error {
	return nil
}

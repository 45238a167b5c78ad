package driven

import (
	"context"

	"github.com/custodia-labs/papermentor/internal/core/domain"
)

// VectorStore keeps named collections of embedded chunks and answers
// nearest-neighbour queries within one collection at a time.
//
// Collections never share records. Writes to the same id replace the
// previous record, and concurrent writes to one collection are serialized
// by the backend.
type VectorStore interface {
	// EnsureCollection creates the collection if it does not exist.
	// Calling it again is a no-op.
	EnsureCollection(ctx context.Context, collection string) error

	// HasCollection reports whether the collection exists.
	HasCollection(ctx context.Context, collection string) (bool, error)

	// Upsert writes records into the collection, creating it on first use.
	Upsert(ctx context.Context, collection string, records []VectorRecord) error

	// Query returns up to k records nearest to the embedding, ascending by distance.
	// A missing collection yields an empty result, not an error.
	Query(ctx context.Context, collection string, embedding []float32, k int) ([]VectorMatch, error)

	// Count returns the number of records in the collection, or 0 if it is missing.
	Count(ctx context.Context, collection string) (int, error)

	// DeleteCollection drops the collection and all of its records.
	// Deleting a missing collection is not an error.
	DeleteCollection(ctx context.Context, collection string) error

	// Close releases resources.
	Close() error
}

// VectorRecord is one embedded chunk as written to a collection.
type VectorRecord struct {
	ID        string
	Text      string
	Metadata  domain.ChunkMetadata
	Embedding []float32
}

// VectorMatch is a record returned by a query with its distance to the query vector.
type VectorMatch struct {
	ID       string
	Text     string
	Metadata domain.ChunkMetadata

	// Distance is the squared euclidean distance. Lower is more similar.
	Distance float64
}

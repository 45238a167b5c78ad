package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
	"github.com/custodia-labs/papermentor/internal/logger"
)

// VectorIndex embeds chunks and keeps them in one collection per session.
// It holds no state of its own; the collections live in the VectorStore.
type VectorIndex struct {
	store     driven.VectorStore
	embedding driven.EmbeddingService
	batchSize int
}

// NewVectorIndex creates a vector index. A batchSize of zero or less uses domain.DefaultBatchSize.
func NewVectorIndex(store driven.VectorStore, embedding driven.EmbeddingService, batchSize int) *VectorIndex {
	if batchSize <= 0 {
		batchSize = domain.DefaultBatchSize
	}
	return &VectorIndex{
		store:     store,
		embedding: embedding,
		batchSize: batchSize,
	}
}

// Upsert embeds and writes chunks into the session's collection.
// Ids and metadata are derived from the session, page and chunk index, so
// writing the same chunk twice replaces it. Batches are embedded one after
// another and each is written before the next is embedded.
// Returns the number of chunks written.
func (v *VectorIndex) Upsert(ctx context.Context, sessionID string, chunks []domain.Chunk) (int, error) {
	if sessionID == "" {
		return 0, fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}

	collection := domain.CollectionName(sessionID)
	if err := v.store.EnsureCollection(ctx, collection); err != nil {
		return 0, fmt.Errorf("%w: create collection %s: %w", domain.ErrStorage, collection, err)
	}

	written := 0
	for start := 0; start < len(chunks); start += v.batchSize {
		end := min(start+v.batchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i := range batch {
			texts[i] = batch[i].Text
		}

		logger.Debug("Embedding batch %d-%d of %d", start, end, len(chunks))
		vectors, err := v.embedding.EmbedBatch(ctx, texts)
		if err != nil {
			return written, fmt.Errorf("%w: %w", domain.ErrEmbeddingProvider, err)
		}
		if len(vectors) != len(batch) {
			return written, fmt.Errorf("%w: expected %d embeddings, got %d",
				domain.ErrEmbeddingProvider, len(batch), len(vectors))
		}

		records := make([]driven.VectorRecord, len(batch))
		for i := range batch {
			md := batch[i].Metadata
			md.SessionID = sessionID
			records[i] = driven.VectorRecord{
				ID:        domain.ChunkID(sessionID, md.Page, md.ChunkIndex),
				Text:      batch[i].Text,
				Metadata:  md,
				Embedding: vectors[i],
			}
		}

		if err := v.store.Upsert(ctx, collection, records); err != nil {
			return written, fmt.Errorf("%w: upsert into %s: %w", domain.ErrStorage, collection, err)
		}
		written += len(records)
	}

	return written, nil
}

// Query returns up to k chunks of the session nearest to the query text.
// A session without a collection has no context yet and yields an empty
// result without calling the embedding provider.
func (v *VectorIndex) Query(ctx context.Context, sessionID, query string, k int) ([]domain.RetrievalResult, error) {
	if k <= 0 {
		return []domain.RetrievalResult{}, nil
	}

	collection := domain.CollectionName(sessionID)
	exists, err := v.store.HasCollection(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("%w: check collection %s: %w", domain.ErrStorage, collection, err)
	}
	if !exists {
		logger.Debug("Collection %s does not exist yet", collection)
		return []domain.RetrievalResult{}, nil
	}

	vector, err := v.embedding.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingProvider, err)
	}

	matches, err := v.store.Query(ctx, collection, vector, k)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %w", domain.ErrStorage, collection, err)
	}

	results := make([]domain.RetrievalResult, 0, len(matches))
	for _, m := range matches {
		if m.Metadata.SessionID != sessionID {
			logger.Warn("Dropping chunk %s from session %q while querying %q", m.ID, m.Metadata.SessionID, sessionID)
			continue
		}
		results = append(results, domain.RetrievalResult{
			Text:     m.Text,
			Metadata: m.Metadata,
			Distance: m.Distance,
		})
		if len(results) == k {
			break
		}
	}

	return results, nil
}

// Drop deletes the session's collection.
func (v *VectorIndex) Drop(ctx context.Context, sessionID string) error {
	if err := v.store.DeleteCollection(ctx, domain.CollectionName(sessionID)); err != nil {
		return fmt.Errorf("%w: delete collection: %w", domain.ErrStorage, err)
	}
	return nil
}

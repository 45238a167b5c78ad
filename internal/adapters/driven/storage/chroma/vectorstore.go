package chroma

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	chhttp "github.com/amikos-tech/chroma-go/pkg/commons/http"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"

	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
)

// Metadata keys written with every record.
const (
	keySession = "session_id"
	keyPage    = "page"
	keyChunk   = "chunk"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is a driven.VectorStore backed by a Chroma server.
type VectorStore struct {
	client chromago.Client

	mu          sync.Mutex
	collections map[string]chromago.Collection
}

// New connects to the Chroma server at baseURL.
func New(baseURL string) (*VectorStore, error) {
	client, err := chromago.NewHTTPClient(chromago.WithBaseURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("creating chroma client: %w", err)
	}
	return &VectorStore{
		client:      client,
		collections: make(map[string]chromago.Collection),
	}, nil
}

// EnsureCollection creates the collection if it does not exist.
func (s *VectorStore) EnsureCollection(ctx context.Context, collection string) error {
	_, err := s.collection(ctx, collection)
	return err
}

// HasCollection reports whether the collection exists on the server.
func (s *VectorStore) HasCollection(ctx context.Context, collection string) (bool, error) {
	col, err := s.client.GetCollection(ctx, collection, getOptions()...)
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up chroma collection %s: %w", collection, err)
	}

	s.mu.Lock()
	if _, ok := s.collections[collection]; !ok {
		s.collections[collection] = col
	}
	s.mu.Unlock()
	return true, nil
}

// Upsert writes records, replacing any with the same id.
func (s *VectorStore) Upsert(ctx context.Context, collection string, records []driven.VectorRecord) error {
	if len(records) == 0 {
		return s.EnsureCollection(ctx, collection)
	}

	col, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}

	ids := make([]chromago.DocumentID, len(records))
	texts := make([]string, len(records))
	embs := make([]embeddings.Embedding, len(records))
	metas := make([]chromago.DocumentMetadata, len(records))
	for i, r := range records {
		ids[i] = chromago.DocumentID(r.ID)
		texts[i] = r.Text
		embs[i] = embeddings.NewEmbeddingFromFloat32(r.Embedding)
		metas[i] = toMetadata(r.Metadata)
	}

	err = col.Upsert(ctx,
		chromago.WithIDs(ids...),
		chromago.WithTexts(texts...),
		chromago.WithEmbeddings(embs...),
		chromago.WithMetadatas(metas...),
	)
	if err != nil {
		return fmt.Errorf("upserting into chroma collection %s: %w", collection, err)
	}
	return nil
}

// Query returns up to k records nearest to the embedding.
// k is clamped to the collection size so small papers never over-ask.
func (s *VectorStore) Query(
	ctx context.Context, collection string, embedding []float32, k int,
) ([]driven.VectorMatch, error) {
	exists, err := s.HasCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !exists || k <= 0 {
		return []driven.VectorMatch{}, nil
	}

	col, err := s.collection(ctx, collection)
	if err != nil {
		return nil, err
	}

	count, err := col.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting chroma collection %s: %w", collection, err)
	}
	if count == 0 {
		return []driven.VectorMatch{}, nil
	}
	k = min(k, int(count))

	results, err := col.Query(ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(embedding)),
		chromago.WithNResults(k),
	)
	if err != nil {
		return nil, fmt.Errorf("querying chroma collection %s: %w", collection, err)
	}

	idGroups := results.GetIDGroups()
	if len(idGroups) == 0 {
		return []driven.VectorMatch{}, nil
	}
	ids := idGroups[0]
	docs := firstGroup(results.GetDocumentsGroups())
	metas := firstGroup(results.GetMetadatasGroups())
	dists := firstGroup(results.GetDistancesGroups())

	matches := make([]driven.VectorMatch, len(ids))
	for i, id := range ids {
		m := driven.VectorMatch{ID: string(id)}
		if i < len(docs) && docs[i] != nil {
			m.Text = docs[i].ContentString()
		}
		if i < len(metas) {
			m.Metadata = fromMetadata(metas[i])
		}
		if i < len(dists) {
			m.Distance = float64(dists[i])
		}
		matches[i] = m
	}
	return matches, nil
}

// Count returns the number of records in the collection, or 0 if it is missing.
func (s *VectorStore) Count(ctx context.Context, collection string) (int, error) {
	exists, err := s.HasCollection(ctx, collection)
	if err != nil || !exists {
		return 0, err
	}
	col, err := s.collection(ctx, collection)
	if err != nil {
		return 0, err
	}
	n, err := col.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting chroma collection %s: %w", collection, err)
	}
	return int(n), nil
}

// DeleteCollection drops the collection. Missing collections are ignored.
func (s *VectorStore) DeleteCollection(ctx context.Context, collection string) error {
	exists, err := s.HasCollection(ctx, collection)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.collections, collection)
	s.mu.Unlock()

	if !exists {
		return nil
	}
	if err := s.client.DeleteCollection(ctx, collection); err != nil {
		return fmt.Errorf("deleting chroma collection %s: %w", collection, err)
	}
	return nil
}

// Close releases the HTTP client.
func (s *VectorStore) Close() error {
	return s.client.Close()
}

// collection returns a cached handle, creating the collection on first use.
func (s *VectorStore) collection(ctx context.Context, name string) (chromago.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if col, ok := s.collections[name]; ok {
		return col, nil
	}

	col, err := s.client.GetOrCreateCollection(ctx, name, createOptions()...)
	if err != nil {
		return nil, fmt.Errorf("opening chroma collection %s: %w", name, err)
	}
	s.collections[name] = col
	return col, nil
}

// embeddingFunction is attached to every collection handle. Vectors are
// always computed by the configured embedding provider, so Chroma never
// embeds text itself. Without an explicit function the client falls back
// to its ONNX default, which downloads a model on first use.
func embeddingFunction() embeddings.EmbeddingFunction {
	return embeddings.NewConsistentHashEmbeddingFunction()
}

func createOptions() []chromago.CreateCollectionOption {
	return []chromago.CreateCollectionOption{
		chromago.WithEmbeddingFunctionCreate(embeddingFunction()),
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("created_by", "papermentor"),
			),
		),
	}
}

func getOptions() []chromago.GetCollectionOption {
	return []chromago.GetCollectionOption{
		chromago.WithEmbeddingFunctionGet(embeddingFunction()),
	}
}

// isNotFound reports whether err is Chroma's answer for a missing collection.
// Older servers signal it with a NotFoundError id rather than a 404.
func isNotFound(err error) bool {
	var chErr *chhttp.ChromaError
	if !errors.As(err, &chErr) {
		return false
	}
	return chErr.ErrorCode == http.StatusNotFound || strings.Contains(chErr.ErrorID, "NotFound")
}

// toMetadata converts chunk metadata into Chroma attributes.
func toMetadata(m domain.ChunkMetadata) chromago.DocumentMetadata {
	return chromago.NewDocumentMetadata(
		chromago.NewStringAttribute(keySession, m.SessionID),
		chromago.NewIntAttribute(keyPage, int64(m.Page)),
		chromago.NewIntAttribute(keyChunk, int64(m.ChunkIndex)),
	)
}

// fromMetadata reads chunk metadata back. Missing keys stay zero.
func fromMetadata(md chromago.DocumentMetadata) domain.ChunkMetadata {
	var m domain.ChunkMetadata
	if md == nil {
		return m
	}
	if v, ok := md.GetString(keySession); ok {
		m.SessionID = v
	}
	if v, ok := md.GetInt(keyPage); ok {
		m.Page = int(v)
	}
	if v, ok := md.GetInt(keyChunk); ok {
		m.ChunkIndex = int(v)
	}
	return m
}

// firstGroup returns the results for the first (only) query embedding.
func firstGroup[T any](groups []T) T {
	var zero T
	if len(groups) == 0 {
		return zero
	}
	return groups[0]
}

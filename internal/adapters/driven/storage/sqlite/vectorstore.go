package sqlite

import (
	"context"
	"fmt"

	"github.com/custodia-labs/papermentor/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
)

// vectorStore implements driven.VectorStore.
// Queries scan the collection's rows and rank them exactly.
type vectorStore struct {
	store *Store
}

var _ driven.VectorStore = (*vectorStore)(nil)

// EnsureCollection creates the collection if it does not exist.
func (s *vectorStore) EnsureCollection(ctx context.Context, collection string) error {
	_, err := s.store.db.ExecContext(ctx,
		"INSERT INTO collections (name) VALUES (?) ON CONFLICT(name) DO NOTHING", collection)
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}
	return nil
}

// HasCollection reports whether the collection exists.
func (s *vectorStore) HasCollection(ctx context.Context, collection string) (bool, error) {
	var n int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM collections WHERE name = ?", collection).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking collection: %w", err)
	}
	return n > 0, nil
}

// Upsert writes records in one transaction, replacing any with the same id.
func (s *vectorStore) Upsert(ctx context.Context, collection string, records []driven.VectorRecord) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO collections (name) VALUES (?) ON CONFLICT(name) DO NOTHING", collection); err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vectors (collection, id, session_id, page, chunk_index, content, embedding, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(collection, id) DO UPDATE SET
			session_id = excluded.session_id,
			page = excluded.page,
			chunk_index = excluded.chunk_index,
			content = excluded.content,
			embedding = excluded.embedding,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, collection, r.ID, r.Metadata.SessionID,
			r.Metadata.Page, r.Metadata.ChunkIndex, r.Text, float32SliceToBytes(r.Embedding)); err != nil {
			return fmt.Errorf("saving vector %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Query returns up to k records nearest to the embedding.
func (s *vectorStore) Query(
	ctx context.Context, collection string, embedding []float32, k int,
) ([]driven.VectorMatch, error) {
	if k <= 0 {
		return []driven.VectorMatch{}, nil
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, session_id, page, chunk_index, content, embedding
		FROM vectors WHERE collection = ?
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	nearest := vecmath.NewNearest[driven.VectorMatch](k)
	for rows.Next() {
		var m driven.VectorMatch
		var blob []byte
		if err := rows.Scan(&m.ID, &m.Metadata.SessionID, &m.Metadata.Page,
			&m.Metadata.ChunkIndex, &m.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		nearest.Offer(m, vecmath.SquaredL2(embedding, bytesToFloat32Slice(blob)))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}

	scored := nearest.Sorted()
	matches := make([]driven.VectorMatch, len(scored))
	for i, sc := range scored {
		matches[i] = sc.Item
		matches[i].Distance = sc.Distance
	}
	return matches, nil
}

// Count returns the number of records in the collection.
func (s *vectorStore) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM vectors WHERE collection = ?", collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting vectors: %w", err)
	}
	return n, nil
}

// DeleteCollection drops the collection and its vectors.
func (s *vectorStore) DeleteCollection(ctx context.Context, collection string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM vectors WHERE collection = ?", collection); err != nil {
		return fmt.Errorf("deleting vectors: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", collection); err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return tx.Commit()
}

// Close is a no-op; the owning Store closes the connection.
func (s *vectorStore) Close() error {
	return nil
}

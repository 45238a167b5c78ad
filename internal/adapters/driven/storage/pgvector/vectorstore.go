// Package pgvector implements driven.VectorStore on PostgreSQL with the
// pgvector extension.
//
// All sessions share one table keyed by (collection, id). The embedding
// column is an unsized vector so models of any dimension can coexist, which
// rules out an ANN index; queries are exact scans within one collection.
package pgvector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
)

const schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS papermentor_collections (
	name TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS papermentor_vectors (
	collection TEXT NOT NULL REFERENCES papermentor_collections(name) ON DELETE CASCADE,
	id TEXT NOT NULL,
	session_id TEXT NOT NULL,
	page INTEGER NOT NULL,
	chunk_index INTEGER NOT NULL,
	content TEXT NOT NULL,
	embedding vector NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
);
`

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is a driven.VectorStore backed by a pgx connection pool.
type VectorStore struct {
	pool *pgxpool.Pool
}

// New connects to dsn and creates the schema if needed.
func New(ctx context.Context, dsn string) (*VectorStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is empty")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating pgvector schema: %w", err)
	}

	return &VectorStore{pool: pool}, nil
}

// EnsureCollection creates the collection if it does not exist.
func (s *VectorStore) EnsureCollection(ctx context.Context, collection string) error {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO papermentor_collections (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", collection)
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}
	return nil
}

// HasCollection reports whether the collection exists.
func (s *VectorStore) HasCollection(ctx context.Context, collection string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM papermentor_collections WHERE name = $1)", collection).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking collection: %w", err)
	}
	return exists, nil
}

// Upsert writes records in one transaction, replacing any with the same id.
func (s *VectorStore) Upsert(ctx context.Context, collection string, records []driven.VectorRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		"INSERT INTO papermentor_collections (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", collection); err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO papermentor_vectors (collection, id, session_id, page, chunk_index, content, embedding)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (collection, id) DO UPDATE SET
				session_id = EXCLUDED.session_id,
				page = EXCLUDED.page,
				chunk_index = EXCLUDED.chunk_index,
				content = EXCLUDED.content,
				embedding = EXCLUDED.embedding,
				updated_at = now()`,
			collection, r.ID, r.Metadata.SessionID, r.Metadata.Page, r.Metadata.ChunkIndex,
			sanitizeText(r.Text), pgvector.NewVector(r.Embedding))
	}

	results := tx.SendBatch(ctx, batch)
	for i := range records {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("saving vector %s: %w", records[i].ID, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("closing batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Query returns up to k records nearest to the embedding.
// pgvector's <-> is the euclidean distance; it is squared to match the other backends.
func (s *VectorStore) Query(
	ctx context.Context, collection string, embedding []float32, k int,
) ([]driven.VectorMatch, error) {
	if k <= 0 {
		return []driven.VectorMatch{}, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, page, chunk_index, content, power(embedding <-> $2, 2) AS distance
		FROM papermentor_vectors
		WHERE collection = $1
		ORDER BY embedding <-> $2, id
		LIMIT $3`,
		collection, pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	matches := []driven.VectorMatch{}
	for rows.Next() {
		var m driven.VectorMatch
		if err := rows.Scan(&m.ID, &m.Metadata.SessionID, &m.Metadata.Page,
			&m.Metadata.ChunkIndex, &m.Text, &m.Distance); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}
	return matches, nil
}

// Count returns the number of records in the collection.
func (s *VectorStore) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM papermentor_vectors WHERE collection = $1", collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting vectors: %w", err)
	}
	return n, nil
}

// DeleteCollection drops the collection; its vectors cascade.
func (s *VectorStore) DeleteCollection(ctx context.Context, collection string) error {
	_, err := s.pool.Exec(ctx, "DELETE FROM papermentor_collections WHERE name = $1", collection)
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *VectorStore) Close() error {
	s.pool.Close()
	return nil
}

// sanitizeText drops invalid UTF-8 and NUL bytes, both of which postgres rejects in TEXT.
func sanitizeText(s string) string {
	return strings.ReplaceAll(strings.ToValidUTF8(s, ""), "\x00", "")
}

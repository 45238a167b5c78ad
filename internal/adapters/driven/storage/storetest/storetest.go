// Package storetest holds behaviour tests shared by every VectorStore and SessionStore backend.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
)

// Record builds a record for session/page/chunk with the given text and vector.
func Record(session string, page, chunk int, text string, vec ...float32) driven.VectorRecord {
	return driven.VectorRecord{
		ID:   domain.ChunkID(session, page, chunk),
		Text: text,
		Metadata: domain.ChunkMetadata{
			SessionID:  session,
			Page:       page,
			ChunkIndex: chunk,
		},
		Embedding: vec,
	}
}

// RunVectorStore exercises the VectorStore contract against a fresh store from newStore.
func RunVectorStore(t *testing.T, newStore func(t *testing.T) driven.VectorStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing collection queries empty", func(t *testing.T) {
		store := newStore(t)

		exists, err := store.HasCollection(ctx, "paper_none")
		require.NoError(t, err)
		assert.False(t, exists)

		matches, err := store.Query(ctx, "paper_none", []float32{1, 0}, 4)
		require.NoError(t, err)
		assert.Empty(t, matches)

		count, err := store.Count(ctx, "paper_none")
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("ensure collection is idempotent", func(t *testing.T) {
		store := newStore(t)

		require.NoError(t, store.EnsureCollection(ctx, "paper_a"))
		require.NoError(t, store.EnsureCollection(ctx, "paper_a"))

		exists, err := store.HasCollection(ctx, "paper_a")
		require.NoError(t, err)
		assert.True(t, exists)

		matches, err := store.Query(ctx, "paper_a", []float32{1, 0}, 4)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("query orders by ascending distance", func(t *testing.T) {
		store := newStore(t)

		require.NoError(t, store.Upsert(ctx, "paper_a", []driven.VectorRecord{
			Record("a", 1, 0, "far", 10, 10),
			Record("a", 1, 1, "near", 1, 0),
			Record("a", 2, 0, "middle", 3, 3),
		}))

		matches, err := store.Query(ctx, "paper_a", []float32{1, 0}, 2)
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, "near", matches[0].Text)
		assert.Equal(t, "middle", matches[1].Text)
		assert.InDelta(t, 0.0, matches[0].Distance, 1e-6)
		assert.LessOrEqual(t, matches[0].Distance, matches[1].Distance)
		assert.Equal(t, domain.ChunkMetadata{SessionID: "a", Page: 1, ChunkIndex: 1}, matches[0].Metadata)
	})

	t.Run("fewer records than k returns all", func(t *testing.T) {
		store := newStore(t)

		require.NoError(t, store.Upsert(ctx, "paper_a", []driven.VectorRecord{
			Record("a", 1, 0, "only", 1, 1),
		}))

		matches, err := store.Query(ctx, "paper_a", []float32{0, 0}, 4)
		require.NoError(t, err)
		assert.Len(t, matches, 1)
	})

	t.Run("upsert replaces by id", func(t *testing.T) {
		store := newStore(t)

		require.NoError(t, store.Upsert(ctx, "paper_a", []driven.VectorRecord{Record("a", 1, 0, "old", 1, 0)}))
		require.NoError(t, store.Upsert(ctx, "paper_a", []driven.VectorRecord{Record("a", 1, 0, "new", 1, 0)}))

		matches, err := store.Query(ctx, "paper_a", []float32{1, 0}, 4)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "new", matches[0].Text)

		count, err := store.Count(ctx, "paper_a")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("collections are isolated", func(t *testing.T) {
		store := newStore(t)

		require.NoError(t, store.Upsert(ctx, "paper_a", []driven.VectorRecord{Record("a", 1, 0, "same text", 1, 0)}))
		require.NoError(t, store.Upsert(ctx, "paper_b", []driven.VectorRecord{Record("b", 1, 0, "same text", 1, 0)}))

		matches, err := store.Query(ctx, "paper_a", []float32{1, 0}, 10)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "a", matches[0].Metadata.SessionID)
	})

	t.Run("delete collection", func(t *testing.T) {
		store := newStore(t)

		require.NoError(t, store.Upsert(ctx, "paper_a", []driven.VectorRecord{Record("a", 1, 0, "x", 1)}))
		require.NoError(t, store.Upsert(ctx, "paper_b", []driven.VectorRecord{Record("b", 1, 0, "y", 1)}))
		require.NoError(t, store.DeleteCollection(ctx, "paper_a"))
		require.NoError(t, store.DeleteCollection(ctx, "paper_missing"))

		exists, err := store.HasCollection(ctx, "paper_a")
		require.NoError(t, err)
		assert.False(t, exists)

		count, err := store.Count(ctx, "paper_b")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("concurrent upserts to different collections", func(t *testing.T) {
		store := newStore(t)

		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				session := string(rune('a' + n))
				errs <- store.Upsert(ctx, domain.CollectionName(session), []driven.VectorRecord{
					Record(session, 1, 0, "text", float32(n), 1),
					Record(session, 1, 1, "more", float32(n), 2),
				})
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		count, err := store.Count(ctx, domain.CollectionName("c"))
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}

// RunSessionStore exercises the SessionStore contract against a fresh store from newStore.
func RunSessionStore(t *testing.T, newStore func(t *testing.T) driven.SessionStore) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	t.Run("save and get", func(t *testing.T) {
		store := newStore(t)
		session := &domain.Session{
			ID:           "abc",
			Filename:     "attention.pdf",
			DocumentPath: "/tmp/abc.pdf",
			PageCount:    11,
			ChunkCount:   42,
			Summary:      "- transformers",
			CreatedAt:    base,
		}
		require.NoError(t, store.SaveSession(ctx, session))

		got, err := store.GetSession(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, session.Filename, got.Filename)
		assert.Equal(t, session.DocumentPath, got.DocumentPath)
		assert.Equal(t, 11, got.PageCount)
		assert.Equal(t, 42, got.ChunkCount)
		assert.Equal(t, "- transformers", got.Summary)
		assert.True(t, base.Equal(got.CreatedAt))
	})

	t.Run("missing session", func(t *testing.T) {
		store := newStore(t)

		_, err := store.GetSession(ctx, "missing")
		assert.True(t, errors.Is(err, domain.ErrNotFound))

		assert.ErrorIs(t, store.DeleteSession(ctx, "missing"), domain.ErrNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.SaveSession(ctx, &domain.Session{ID: "old", CreatedAt: base}))
		require.NoError(t, store.SaveSession(ctx, &domain.Session{ID: "new", CreatedAt: base.Add(time.Hour)}))

		sessions, err := store.ListSessions(ctx)
		require.NoError(t, err)
		require.Len(t, sessions, 2)
		assert.Equal(t, "new", sessions[0].ID)
		assert.Equal(t, "old", sessions[1].ID)
	})

	t.Run("delete", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.SaveSession(ctx, &domain.Session{ID: "gone", CreatedAt: base}))
		require.NoError(t, store.DeleteSession(ctx, "gone"))

		_, err := store.GetSession(ctx, "gone")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

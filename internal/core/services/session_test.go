package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papermentor/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/papermentor/internal/core/domain"
)

func TestSessionService_ListNewestFirst(t *testing.T) {
	sessions := memory.NewSessionStore()
	svc := NewSessionService(sessions, NewVectorIndex(memory.NewVectorStore(), newMockEmbedding(), 0), nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, sessions.SaveSession(t.Context(), &domain.Session{ID: "a", CreatedAt: base}))
	require.NoError(t, sessions.SaveSession(t.Context(), &domain.Session{ID: "b", CreatedAt: base.Add(time.Hour)}))

	list, err := svc.List(t.Context())

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
}

func TestSessionService_Get(t *testing.T) {
	sessions := memory.NewSessionStore()
	svc := NewSessionService(sessions, NewVectorIndex(memory.NewVectorStore(), newMockEmbedding(), 0), nil)

	_, err := svc.Get(t.Context(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Get(t.Context(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionService_DeleteRemovesEverything(t *testing.T) {
	f := newIngestFixture(t, "some text")
	_, err := f.svc.Ingest(t.Context(), pdfRequest())
	require.NoError(t, err)

	svc := NewSessionService(f.sessions, NewVectorIndex(f.store, f.embed, 0), f.files)

	require.NoError(t, svc.Delete(t.Context(), testSession))

	_, err = f.sessions.GetSession(t.Context(), testSession)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	exists, err := f.store.HasCollection(t.Context(), domain.CollectionName(testSession))
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Zero(t, f.files.Len())
}

func TestSessionService_DeleteOrphanCollection(t *testing.T) {
	store := memory.NewVectorStore()
	index := NewVectorIndex(store, newMockEmbedding(), 0)
	_, err := index.Upsert(t.Context(), testSession, []domain.Chunk{chunk(1, 0, "x")})
	require.NoError(t, err)
	svc := NewSessionService(memory.NewSessionStore(), index, nil)

	err = svc.Delete(t.Context(), testSession)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	exists, hasErr := store.HasCollection(t.Context(), domain.CollectionName(testSession))
	require.NoError(t, hasErr)
	assert.False(t, exists, "collection dropped even without a record")
}

package chroma

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	chhttp "github.com/amikos-tech/chroma-go/pkg/commons/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papermentor/internal/adapters/driven/storage/storetest"
	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
)

func TestMetadataRoundtrip(t *testing.T) {
	in := domain.ChunkMetadata{SessionID: "abc", Page: 3, ChunkIndex: 7}

	out := fromMetadata(toMetadata(in))

	assert.Equal(t, in, out)
}

func TestFromMetadata_Nil(t *testing.T) {
	assert.Equal(t, domain.ChunkMetadata{}, fromMetadata(nil))
}

func TestFirstGroup(t *testing.T) {
	assert.Nil(t, firstGroup[[]int](nil))
	assert.Equal(t, []int{1, 2}, firstGroup([][]int{{1, 2}, {3}}))
}

// fakeChroma answers the collection endpoints for a fixed set of names.
type fakeChroma struct {
	mu       sync.Mutex
	existing map[string]bool
	requests []string
}

func newFakeChroma(t *testing.T, existing ...string) (*fakeChroma, *VectorStore) {
	t.Helper()
	f := &fakeChroma{existing: make(map[string]bool)}
	for _, name := range existing {
		f.existing[name] = true
	}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	store, err := New(srv.URL)
	require.NoError(t, err)
	return f, store
}

func (f *fakeChroma) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	const prefix = "/api/v2/tenants/default_tenant/databases/default_database/collections"
	name := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, prefix), "/")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && name == "":
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = fmt.Fprint(w, `{"error":"InternalError","message":"listing is not expected"}`)
	case r.Method == http.MethodGet:
		if !f.existing[name] {
			w.WriteHeader(http.StatusNotFound)
			_, _ = fmt.Fprintf(w, `{"error":"NotFoundError","message":"Collection %s does not exist."}`, name)
			return
		}
		_, _ = fmt.Fprintf(w, `{"id":"id-%s","name":%q}`, name, name)
	case r.Method == http.MethodPost && name == "":
		var body struct {
			Name string `json:"name"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.existing[body.Name] = true
		_, _ = fmt.Fprintf(w, `{"id":"id-%s","name":%q}`, body.Name, body.Name)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeChroma) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func TestHasCollection_LooksUpByName(t *testing.T) {
	f, store := newFakeChroma(t, "session_a")

	ok, err := store.HasCollection(context.Background(), "session_a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.HasCollection(context.Background(), "session_b")
	require.NoError(t, err)
	assert.False(t, ok)

	for _, req := range f.seen() {
		assert.False(t, strings.HasSuffix(req, "/collections"), "unexpected listing request %s", req)
	}
}

func TestHasCollection_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = fmt.Fprint(w, `{"error":"InternalError","message":"boom"}`)
	}))
	t.Cleanup(srv.Close)
	store, err := New(srv.URL)
	require.NoError(t, err)

	_, err = store.HasCollection(context.Background(), "session_a")
	assert.Error(t, err)
}

func TestEnsureCollection_CreatesWithoutDefaultEmbedder(t *testing.T) {
	f, store := newFakeChroma(t)

	require.NoError(t, store.EnsureCollection(context.Background(), "session_a"))

	ok, err := store.HasCollection(context.Background(), "session_a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, f.seen(), "POST /api/v2/tenants/default_tenant/databases/default_database/collections")
}

func TestCreateOptions_CarryEmbeddingFunction(t *testing.T) {
	op, err := chromago.NewCreateCollectionOp("session_a", createOptions()...)
	require.NoError(t, err)
	require.NoError(t, op.PrepareAndValidateCollectionRequest())
	v, ok := op.Metadata.GetString("created_by")
	assert.True(t, ok)
	assert.Equal(t, "papermentor", v)

	get, err := chromago.NewGetCollectionOp(append(getOptions(), chromago.WithCollectionNameGet("session_a"))...)
	require.NoError(t, err)
	assert.NoError(t, get.PrepareAndValidateCollectionRequest())
}

func TestIsNotFound(t *testing.T) {
	assert.False(t, isNotFound(nil))
	assert.False(t, isNotFound(fmt.Errorf("dial tcp: refused")))
	assert.True(t, isNotFound(fmt.Errorf("get: %w", &chhttp.ChromaError{ErrorCode: http.StatusNotFound})))
	assert.True(t, isNotFound(&chhttp.ChromaError{ErrorCode: http.StatusInternalServerError, ErrorID: "NotFoundError"}))
	assert.False(t, isNotFound(&chhttp.ChromaError{ErrorCode: http.StatusInternalServerError, ErrorID: "InternalError"}))
}

// TestVectorStoreContract runs against a live server when CHROMA_TEST_URL is set.
func TestVectorStoreContract(t *testing.T) {
	url := os.Getenv("CHROMA_TEST_URL")
	if url == "" {
		t.Skip("CHROMA_TEST_URL not set")
	}

	storetest.RunVectorStore(t, func(t *testing.T) driven.VectorStore {
		store, err := New(url)
		require.NoError(t, err)
		t.Cleanup(func() {
			for _, session := range "abcdefgh" {
				_ = store.DeleteCollection(context.Background(), domain.CollectionName(string(session)))
			}
			_ = store.Close()
		})
		return store
	})
}

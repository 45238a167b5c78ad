package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papermentor/internal/core/domain"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fixture struct {
	ingest    *mockIngest
	chat      *mockChat
	retrieval *mockRetrieval
	sessions  *mockSessions
	handler   http.Handler
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		ingest:    &mockIngest{},
		chat:      &mockChat{},
		retrieval: &mockRetrieval{},
		sessions:  &mockSessions{},
	}
	srv, err := NewServer(&Ports{
		Ingest:    f.ingest,
		Chat:      f.chat,
		Retrieval: f.retrieval,
		Sessions:  f.sessions,
	}, opts...)
	require.NoError(t, err)
	f.handler = srv.Handler()
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, path string, body any) *http.Request {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uploadRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload_pdf", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestNewServer_InvalidPorts(t *testing.T) {
	_, err := NewServer(&Ports{})
	assert.ErrorIs(t, err, ErrMissingIngestService)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCORS_Preflight(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodOptions, "/api/chat", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestUploadPDF_Success(t *testing.T) {
	f := newFixture(t)
	f.ingest.result = &domain.IngestResult{
		SessionID:  "abc",
		Summary:    "A short summary.",
		PageCount:  3,
		ChunkCount: 5,
	}

	rec := f.do(uploadRequest(t, "file", "paper.pdf", []byte("%PDF-1.4")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"session_id":"abc","summary":"A short summary.","page_count":3,"chunk_count":5}`,
		rec.Body.String())
	assert.Equal(t, "paper.pdf", f.ingest.last.Filename)
	assert.Equal(t, []byte("%PDF-1.4"), f.ingest.last.Content)
}

func TestUploadPDF_SummaryFailureStillSucceeds(t *testing.T) {
	f := newFixture(t)
	f.ingest.result = &domain.IngestResult{
		SessionID:  "abc",
		Summary:    "Summary unavailable due to an error: boom",
		SummaryErr: errors.New("boom"),
	}

	rec := f.do(uploadRequest(t, "file", "paper.pdf", []byte("%PDF")))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "SummaryErr")
}

func TestUploadPDF_MissingFile(t *testing.T) {
	f := newFixture(t)

	rec := f.do(uploadRequest(t, "document", "paper.pdf", []byte("%PDF")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please upload a PDF file.", decode[errorResponse](t, rec).Detail)
}

func TestUploadPDF_TooLarge(t *testing.T) {
	f := newFixture(t, WithMaxUploadBytes(8))

	rec := f.do(uploadRequest(t, "file", "paper.pdf", []byte("0123456789abcdef")))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUploadPDF_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not a pdf", fmt.Errorf("%w: please upload a PDF file", domain.ErrInvalidInput), http.StatusBadRequest},
		{"encrypted", domain.ErrDecryption, http.StatusBadRequest},
		{"corrupt", fmt.Errorf("%w: xref", domain.ErrUnreadablePDF), http.StatusBadRequest},
		{"no text", domain.ErrNoExtractableText, http.StatusBadRequest},
		{"extractor missing", fmt.Errorf("%w: pdftotext not found", domain.ErrExtractorUnavailable),
			http.StatusServiceUnavailable},
		{"embedding", fmt.Errorf("%w: quota", domain.ErrEmbeddingProvider), http.StatusInternalServerError},
		{"unconfigured", fmt.Errorf("%w: %w", domain.ErrEmbeddingProvider, domain.ErrEmbeddingUnavailable),
			http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.ingest.err = tt.err

			rec := f.do(uploadRequest(t, "file", "paper.pdf", []byte("%PDF")))

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.err.Error(), decode[errorResponse](t, rec).Detail)
		})
	}
}

func TestChat_Success(t *testing.T) {
	f := newFixture(t)
	f.chat.reply = &domain.ChatReply{
		Reply:   "What problem does the paper address?",
		Sources: []domain.SourcePreview{{Page: 1, Excerpt: "Intro"}},
	}

	rec := f.do(jsonRequest(http.MethodPost, "/api/chat", map[string]any{
		"session_id":   "abc",
		"user_message": "hi",
		"chat_history": []map[string]string{
			{"role": "assistant", "content": "Hello"},
			{"role": "user", "content": "Hey"},
		},
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"ai_message":"What problem does the paper address?","sources":[{"page":1,"excerpt":"Intro"}]}`,
		rec.Body.String())
	assert.Equal(t, "abc", f.chat.last.SessionID)
	assert.Equal(t, "hi", f.chat.last.UserMessage)
	assert.Len(t, f.chat.last.History, 2)
	assert.False(t, f.chat.last.Lead)
}

func TestChat_LeadWithNoSources(t *testing.T) {
	f := newFixture(t)
	f.chat.reply = &domain.ChatReply{Reply: "Let's begin."}

	rec := f.do(jsonRequest(http.MethodPost, "/api/chat", map[string]any{
		"session_id": "abc",
		"lead":       true,
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ai_message":"Let's begin.","sources":[]}`, rec.Body.String())
	assert.True(t, f.chat.last.Lead)
}

func TestChat_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"session_id":`},
		{"missing session", `{"user_message":"hi"}`},
		{"invalid role", `{"session_id":"abc","chat_history":[{"role":"system","content":"x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			rec := f.do(req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, f.chat.last.SessionID)
		})
	}
}

func TestChat_GenerationFailure(t *testing.T) {
	f := newFixture(t)
	f.chat.err = fmt.Errorf("%w: overloaded", domain.ErrGenerationProvider)

	rec := f.do(jsonRequest(http.MethodPost, "/api/chat", map[string]any{"session_id": "abc"}))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRetrieve(t *testing.T) {
	f := newFixture(t)
	f.retrieval.grounding = &domain.GroundingContext{
		Context: "[p.2] text",
		Sources: []domain.SourcePreview{{Page: 2, Excerpt: "text"}},
		Results: []domain.RetrievalResult{{
			Text:     "text",
			Metadata: domain.ChunkMetadata{SessionID: "abc", Page: 2},
			Distance: 0.5,
		}},
	}

	rec := f.do(jsonRequest(http.MethodPost, "/api/retrieve", map[string]any{
		"session_id": "abc",
		"query":      "method",
		"k":          2,
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[retrieveResponse](t, rec)
	assert.Equal(t, "[p.2] text", resp.Context)
	assert.Len(t, resp.Results, 1)
	assert.Equal(t, 2, f.retrieval.lastK)
}

func TestRetrieve_EmptyCollection(t *testing.T) {
	f := newFixture(t)
	f.retrieval.grounding = &domain.GroundingContext{Context: "(no context retrieved)"}

	rec := f.do(jsonRequest(http.MethodPost, "/api/retrieve", map[string]any{"session_id": "abc"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"context":"(no context retrieved)","sources":[],"results":[]}`, rec.Body.String())
}

func TestRetrieve_MissingSession(t *testing.T) {
	f := newFixture(t)

	rec := f.do(jsonRequest(http.MethodPost, "/api/retrieve", map[string]any{"query": "x"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessions(t *testing.T) {
	f := newFixture(t)
	f.sessions.sessions = []domain.Session{
		{ID: "abc", Filename: "a.pdf", PageCount: 2, ChunkCount: 3},
		{ID: "def", Filename: "b.pdf"},
	}

	t.Run("list", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/api/sessions", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[sessionsResponse](t, rec)
		assert.Len(t, resp.Sessions, 2)
	})

	t.Run("get", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/api/sessions/abc", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		session := decode[domain.Session](t, rec)
		assert.Equal(t, "a.pdf", session.Filename)
	})

	t.Run("get unknown", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/api/sessions/zzz", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodDelete, "/api/sessions/def", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, []string{"def"}, f.sessions.deleted)
	})

	t.Run("delete unknown", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodDelete, "/api/sessions/zzz", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSessions_EmptyListIsArray(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/sessions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sessions":[]}`, rec.Body.String())
}

func TestSessions_StorageFailure(t *testing.T) {
	f := newFixture(t)
	f.sessions.err = fmt.Errorf("%w: disk", domain.ErrStorage)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/sessions", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrLLMUnavailable, http.StatusServiceUnavailable},
		{domain.ErrExtractorUnavailable, http.StatusServiceUnavailable},
		{fmt.Errorf("%w: %w", domain.ErrGenerationProvider, domain.ErrLLMUnavailable), http.StatusServiceUnavailable},
		{domain.ErrGenerationProvider, http.StatusBadGateway},
		{domain.ErrStorage, http.StatusInternalServerError},
		{errors.New("other"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

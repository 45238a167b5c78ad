package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedding implements driven.EmbeddingService.
// Texts found in vectors embed to that vector; anything else embeds by length.
// short drops the last vector of every batch. failFrom is the 1-based batch
// number err starts at; zero fails every call.
type mockEmbedding struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	err      error
	short    bool
	batches  [][]string
	queries  []string
	failFrom int
}

func newMockEmbedding() *mockEmbedding {
	return &mockEmbedding{vectors: map[string][]float32{}}
}

func (m *mockEmbedding) vector(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	return []float32{float32(len(text)), 1}
}

func (m *mockEmbedding) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, text)
	if m.err != nil {
		return nil, m.err
	}
	return m.vector(text), nil
}

func (m *mockEmbedding) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, append([]string(nil), texts...))
	if m.err != nil && (m.failFrom == 0 || len(m.batches) >= m.failFrom) {
		return nil, m.err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		out = append(out, m.vector(t))
	}
	if m.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbedding) Dimensions() int              { return 2 }
func (m *mockEmbedding) ModelName() string            { return "mock-embed" }
func (m *mockEmbedding) Ping(_ context.Context) error { return nil }
func (m *mockEmbedding) Close() error                 { return nil }

// mockLLM implements driven.LLMService and records every request.
type mockLLM struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests [][]driven.ChatMessage
	options  []driven.ChatOptions
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, append([]driven.ChatMessage(nil), messages...))
	m.options = append(m.options, opts)
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

func (m *mockLLM) last() []driven.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

// mockExtractor implements driven.PageExtractor.
type mockExtractor struct {
	pages []string
	err   error
	paths []string
}

func (m *mockExtractor) ExtractPages(_ context.Context, path string) ([]string, error) {
	m.paths = append(m.paths, path)
	if m.err != nil {
		return nil, m.err
	}
	return m.pages, nil
}

// mockPromptStore implements driven.PromptStore.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.prompts[name], nil
}

func (m *mockPromptStore) Reload() {}

// mockValidator implements driven.AIConfigValidator.
type mockValidator struct {
	embeddingErr error
	llmErr       error
	embedding    *domain.EmbeddingSettings
	llm          *domain.LLMSettings
}

func (m *mockValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	m.embedding = cfg
	return m.embeddingErr
}

func (m *mockValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	m.llm = cfg
	return m.llmErr
}

// failingVectorStore wraps a VectorStore and fails selected calls.
type failingVectorStore struct {
	driven.VectorStore
	upsertErr error
	queryErr  error
}

func (f *failingVectorStore) Upsert(ctx context.Context, collection string, records []driven.VectorRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	return f.VectorStore.Upsert(ctx, collection, records)
}

func (f *failingVectorStore) Query(
	ctx context.Context, collection string, embedding []float32, k int,
) ([]driven.VectorMatch, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.VectorStore.Query(ctx, collection, embedding, k)
}

// Compile-time checks.
var (
	_ driven.EmbeddingService  = (*mockEmbedding)(nil)
	_ driven.LLMService        = (*mockLLM)(nil)
	_ driven.PageExtractor     = (*mockExtractor)(nil)
	_ driven.PromptStore       = (*mockPromptStore)(nil)
	_ driven.AIConfigValidator = (*mockValidator)(nil)
)

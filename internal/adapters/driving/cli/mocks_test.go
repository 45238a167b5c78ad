package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/papermentor/internal/core/domain"
)

// mockIngestService implements driving.IngestService for testing.
type mockIngestService struct {
	requests []domain.IngestRequest
	err      error
}

func (m *mockIngestService) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestResult{
		SessionID:  "abc123",
		Summary:    "This paper introduces the Transformer.",
		PageCount:  15,
		ChunkCount: 42,
	}, nil
}

// mockChatService implements driving.ChatService for testing.
type mockChatService struct {
	requests []domain.ChatRequest
	replies  []string
	err      error
	// failTurn makes only the nth call (1-based) fail with err.
	failTurn int
}

func (m *mockChatService) Respond(_ context.Context, req domain.ChatRequest) (*domain.ChatReply, error) {
	m.requests = append(m.requests, req)
	if m.err != nil && (m.failTurn == 0 || m.failTurn == len(m.requests)) {
		return nil, m.err
	}
	reply := "What do you think the authors mean?"
	if n := len(m.requests) - 1; n < len(m.replies) {
		reply = m.replies[n]
	}
	return &domain.ChatReply{
		Reply:   reply,
		Sources: []domain.SourcePreview{{Page: 2, Excerpt: "We propose a new architecture"}},
	}, nil
}

// mockRetrievalService implements driving.RetrievalService for testing.
type mockRetrievalService struct {
	lastK int
	err   error
}

func (m *mockRetrievalService) Retrieve(_ context.Context, sessionID, query string, k int) (*domain.GroundingContext, error) {
	m.lastK = k
	if m.err != nil {
		return nil, m.err
	}
	return &domain.GroundingContext{
		Context: "[p.3] " + query,
		Results: []domain.RetrievalResult{{
			Text:     "Multi-head attention lets the model attend jointly.",
			Metadata: domain.ChunkMetadata{SessionID: sessionID, Page: 3, ChunkIndex: 1},
			Distance: 0.1234,
		}},
	}, nil
}

// mockSessionService implements driving.SessionService for testing.
type mockSessionService struct {
	sessions []domain.Session
	deleted  []string
	err      error
}

func (m *mockSessionService) List(_ context.Context) ([]domain.Session, error) {
	return m.sessions, m.err
}

func (m *mockSessionService) Get(_ context.Context, id string) (*domain.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			return &m.sessions[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockSessionService) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	backend     domain.VectorBackend
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding = domain.EmbeddingSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM = domain.LLMSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetVectorBackend(backend domain.VectorBackend) error {
	m.backend = backend
	m.settings.Storage.Backend = backend
	return nil
}

func (m *mockSettingsService) Validate() error                { return m.validateErr }
func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }
func (m *mockSettingsService) ValidateLLMConfig() error       { return nil }

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// testServices bundles the mocks installed by setupTestServices.
type testServices struct {
	ingest    *mockIngestService
	chat      *mockChatService
	retrieval *mockRetrievalService
	sessions  *mockSessionService
	settings  *mockSettingsService
}

// setupTestServices installs mocks and returns them with a cleanup function.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		ingest:    &mockIngestService{},
		chat:      &mockChatService{},
		retrieval: &mockRetrievalService{},
		sessions: &mockSessionService{sessions: []domain.Session{{
			ID:           "abc123",
			Filename:     "attention.pdf",
			DocumentPath: "/data/uploads/abc123_attention.pdf",
			PageCount:    15,
			ChunkCount:   42,
			Summary:      "This paper introduces the Transformer.",
			CreatedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		}}},
		settings: &mockSettingsService{settings: domain.DefaultAppSettings()},
	}

	SetServices(&Services{
		Ingest:    ts.ingest,
		Chat:      ts.chat,
		Retrieval: ts.retrieval,
		Sessions:  ts.sessions,
		Settings:  ts.settings,
	})
	prevTerminal := isTerminal
	isTerminal = func() bool { return false }

	return ts, func() {
		SetServices(nil)
		isTerminal = prevTerminal
	}
}

package mcp

import (
	"context"

	"github.com/custodia-labs/papermentor/internal/core/domain"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	reply *domain.ChatReply
	err   error
	last  domain.ChatRequest
}

func (m *mockChatService) Respond(_ context.Context, req domain.ChatRequest) (*domain.ChatReply, error) {
	m.last = req
	return m.reply, m.err
}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	grounding *domain.GroundingContext
	err       error
	lastK     int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _, _ string, k int) (*domain.GroundingContext, error) {
	m.lastK = k
	return m.grounding, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result *domain.IngestResult
	err    error
	last   domain.IngestRequest
}

func (m *mockIngestService) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	m.last = req
	return m.result, m.err
}

// mockSessionService is a mock implementation of driving.SessionService.
type mockSessionService struct {
	sessions []domain.Session
	session  *domain.Session
	err      error
}

func (m *mockSessionService) List(_ context.Context) ([]domain.Session, error) {
	return m.sessions, m.err
}

func (m *mockSessionService) Get(_ context.Context, _ string) (*domain.Session, error) {
	if m.session == nil && m.err == nil {
		return nil, domain.ErrNotFound
	}
	return m.session, m.err
}

func (m *mockSessionService) Delete(_ context.Context, _ string) error {
	return m.err
}

func requiredPorts() *Ports {
	return &Ports{
		Chat:      &mockChatService{},
		Retrieval: &mockRetrievalService{},
	}
}

package httpapi

import (
	"context"

	"github.com/custodia-labs/papermentor/internal/core/domain"
)

type mockIngest struct {
	result *domain.IngestResult
	err    error
	last   domain.IngestRequest
}

func (m *mockIngest) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	m.last = req
	return m.result, m.err
}

type mockChat struct {
	reply *domain.ChatReply
	err   error
	last  domain.ChatRequest
}

func (m *mockChat) Respond(_ context.Context, req domain.ChatRequest) (*domain.ChatReply, error) {
	m.last = req
	return m.reply, m.err
}

type mockRetrieval struct {
	grounding *domain.GroundingContext
	err       error
	lastK     int
}

func (m *mockRetrieval) Retrieve(_ context.Context, _, _ string, k int) (*domain.GroundingContext, error) {
	m.lastK = k
	return m.grounding, m.err
}

type mockSessions struct {
	sessions []domain.Session
	err      error
	deleted  []string
}

func (m *mockSessions) List(context.Context) ([]domain.Session, error) {
	return m.sessions, m.err
}

func (m *mockSessions) Get(_ context.Context, id string) (*domain.Session, error) {
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

func (m *mockSessions) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	for _, s := range m.sessions {
		if s.ID == id {
			m.deleted = append(m.deleted, id)
			return nil
		}
	}
	return domain.ErrNotFound
}

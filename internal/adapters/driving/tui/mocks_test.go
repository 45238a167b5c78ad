package tui

import (
	"context"

	"github.com/custodia-labs/papermentor/internal/core/domain"
)

// MockChatService implements driving.ChatService for testing.
type MockChatService struct {
	RespondFunc func(ctx context.Context, req domain.ChatRequest) (*domain.ChatReply, error)
}

func (m *MockChatService) Respond(ctx context.Context, req domain.ChatRequest) (*domain.ChatReply, error) {
	if m.RespondFunc != nil {
		return m.RespondFunc(ctx, req)
	}
	return &domain.ChatReply{Reply: "What is the paper's main claim?"}, nil
}

// MockSessionService implements driving.SessionService for testing.
type MockSessionService struct {
	ListFunc func(ctx context.Context) ([]domain.Session, error)
}

func (m *MockSessionService) List(ctx context.Context) ([]domain.Session, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockSessionService) Get(_ context.Context, id string) (*domain.Session, error) {
	return &domain.Session{ID: id}, nil
}

func (m *MockSessionService) Delete(_ context.Context, _ string) error {
	return nil
}

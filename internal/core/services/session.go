package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
	"github.com/custodia-labs/papermentor/internal/core/ports/driving"
)

// Ensure SessionService implements the interface.
var _ driving.SessionService = (*SessionService)(nil)

// SessionService manages the catalogue of ingested papers.
type SessionService struct {
	sessions driven.SessionStore
	index    *VectorIndex
	files    driven.FileStore
}

// NewSessionService creates a session service.
func NewSessionService(sessions driven.SessionStore, index *VectorIndex, files driven.FileStore) *SessionService {
	return &SessionService{
		sessions: sessions,
		index:    index,
		files:    files,
	}
}

// List returns all sessions, newest first.
func (s *SessionService) List(ctx context.Context) ([]domain.Session, error) {
	sessions, err := s.sessions.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// Get retrieves a session by ID.
func (s *SessionService) Get(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}
	return s.sessions.GetSession(ctx, id)
}

// Delete removes the session record, its collection and its stored PDF.
// The collection and file are removed even when the record is already gone.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}

	session, err := s.sessions.GetSession(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if err := s.index.Drop(ctx, id); err != nil {
		return err
	}

	if session == nil {
		return domain.ErrNotFound
	}

	if session.DocumentPath != "" && s.files != nil {
		if err := s.files.Remove(ctx, session.DocumentPath); err != nil {
			return fmt.Errorf("remove document: %w", err)
		}
	}

	return s.sessions.DeleteSession(ctx, id)
}

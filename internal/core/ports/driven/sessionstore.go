package driven

import (
	"context"

	"github.com/custodia-labs/papermentor/internal/core/domain"
)

// SessionStore records ingested papers.
type SessionStore interface {
	// SaveSession stores a session record.
	SaveSession(ctx context.Context, session *domain.Session) error

	// GetSession retrieves a session by ID. Returns domain.ErrNotFound if missing.
	GetSession(ctx context.Context, id string) (*domain.Session, error)

	// ListSessions returns all sessions, newest first.
	ListSessions(ctx context.Context) ([]domain.Session, error)

	// DeleteSession removes a session record. Returns domain.ErrNotFound if missing.
	DeleteSession(ctx context.Context, id string) error
}

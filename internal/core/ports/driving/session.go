package driving

import (
	"context"

	"github.com/custodia-labs/papermentor/internal/core/domain"
)

// SessionService manages the catalogue of ingested papers.
type SessionService interface {
	// List returns all sessions, newest first.
	List(ctx context.Context) ([]domain.Session, error)

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Delete removes a session, its vector collection and its stored document.
	Delete(ctx context.Context, id string) error
}

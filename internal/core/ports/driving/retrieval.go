package driving

import (
	"context"

	"github.com/custodia-labs/papermentor/internal/core/domain"
)

// RetrievalService assembles grounding context from a session's chunks.
type RetrievalService interface {
	// Retrieve fetches the k nearest chunks to the query and formats them.
	// A k of zero or less uses the configured default.
	Retrieve(ctx context.Context, sessionID, query string, k int) (*domain.GroundingContext, error)
}

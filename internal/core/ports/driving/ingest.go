package driving

import (
	"context"

	"github.com/custodia-labs/papermentor/internal/core/domain"
)

// IngestService turns an uploaded PDF into a queryable session.
type IngestService interface {
	// Ingest persists, extracts, chunks, embeds and indexes one paper and
	// summarises it. A returned session is always queryable.
	Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error)
}

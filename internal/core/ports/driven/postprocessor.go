package driven

import (
	"context"

	"github.com/custodia-labs/papermentor/internal/core/domain"
)

// PostProcessor turns an extracted paper into chunks, or refines chunks.
// PostProcessors are chained in a pipeline (e.g., chunking then capping).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a paper and returns chunks.
	// A chunk-creating processor receives nil chunks; later processors receive
	// and return the chunks produced so far.
	Process(ctx context.Context, paper *domain.Paper, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the paper through all processors in order.
	Process(ctx context.Context, paper *domain.Paper) ([]domain.Chunk, error)
}

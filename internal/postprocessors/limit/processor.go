// Package limit caps how many chunks one upload may index.
package limit

import (
	"context"

	"github.com/custodia-labs/papermentor/internal/core/domain"
)

// Processor keeps only the first N chunks it is given.
// It implements the PostProcessor interface.
type Processor struct {
	maxChunks int
}

// New creates a limit processor. A maxChunks of zero or less disables the cap.
func New(maxChunks int) *Processor {
	return &Processor{maxChunks: maxChunks}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "limit"
}

// MaxChunks returns the cap, or zero when disabled.
func (p *Processor) MaxChunks() int {
	if p.maxChunks < 0 {
		return 0
	}
	return p.maxChunks
}

// Process truncates chunks to the cap. Chunks arrive in page/offset order,
// so the survivors are always the start of the paper.
func (p *Processor) Process(_ context.Context, _ *domain.Paper, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if p.maxChunks <= 0 || len(chunks) <= p.maxChunks {
		return chunks, nil
	}
	return chunks[:p.maxChunks], nil
}

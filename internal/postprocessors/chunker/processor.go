// Package chunker splits page text into overlapping fixed-size windows.
package chunker

import (
	"context"
	"fmt"

	"github.com/custodia-labs/papermentor/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Processor splits every page of a paper into chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a chunker processor.
// The overlap must be non-negative and smaller than the chunk size.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d", domain.ErrInvalidConfig, p.chunkSize)
	}
	if p.overlap < 0 || p.overlap >= p.chunkSize {
		return nil, fmt.Errorf("%w: overlap %d with chunk size %d",
			domain.ErrInvalidConfig, p.overlap, p.chunkSize)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process chunks every page of the paper.
// Input chunks are ignored; this processor creates new chunks from page text.
func (p *Processor) Process(_ context.Context, paper *domain.Paper, _ []domain.Chunk) ([]domain.Chunk, error) {
	return ChunkPages(paper.SessionID, paper.Pages, p.chunkSize, p.overlap), nil
}

// Split walks text once, emitting windows of up to maxLen characters.
// Each window after the first starts maxLen-overlap characters after the
// previous one, so consecutive windows share overlap characters. The walk
// stops at the first window that reaches the end of the text.
//
// Lengths count runes, not bytes. An overlap outside [0, maxLen) falls back
// to maxLen/4 so the cursor always advances.
func Split(text string, maxLen, overlap int) []string {
	if text == "" || maxLen <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= maxLen {
		overlap = maxLen / 4
	}

	runes := []rune(text)
	n := len(runes)
	step := maxLen - overlap

	chunks := make([]string, 0, n/step+1)
	for start := 0; start < n; start += step {
		end := start + maxLen
		if end >= n {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}

// ChunkPages splits each page independently. Pages are numbered from 1 and
// chunks from 0 within their page; empty pages yield nothing but still
// occupy their page number.
func ChunkPages(sessionID string, pages []string, maxLen, overlap int) []domain.Chunk {
	var chunks []domain.Chunk

	for i, text := range pages {
		page := i + 1
		for ci, part := range Split(text, maxLen, overlap) {
			chunks = append(chunks, domain.Chunk{
				ID:   domain.ChunkID(sessionID, page, ci),
				Text: part,
				Metadata: domain.ChunkMetadata{
					SessionID:  sessionID,
					Page:       page,
					ChunkIndex: ci,
				},
			})
		}
	}

	return chunks
}

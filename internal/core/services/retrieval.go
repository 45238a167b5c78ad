package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/ports/driving"
	"github.com/custodia-labs/papermentor/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

const (
	// NoContextPlaceholder stands in for the context when nothing was retrieved.
	NoContextPlaceholder = "(no context retrieved)"

	// contextSeparator sits between retrieved blocks.
	contextSeparator = "\n\n---\n\n"

	// ellipsis marks a truncated excerpt.
	ellipsis = "…"
)

// RetrievalService formats a session's nearest chunks into grounding context.
type RetrievalService struct {
	index        *VectorIndex
	defaultK     int
	previewChars int
}

// NewRetrievalService creates a retrieval service.
func NewRetrievalService(index *VectorIndex, cfg domain.Config) *RetrievalService {
	k := cfg.TopK
	if k <= 0 {
		k = domain.DefaultTopK
	}
	preview := cfg.PreviewChars
	if preview <= 0 {
		preview = domain.DefaultPreviewChars
	}
	return &RetrievalService{
		index:        index,
		defaultK:     k,
		previewChars: preview,
	}
}

// Retrieve fetches up to k chunks and formats them as page-tagged blocks.
// A blank query searches for a general overview of the paper.
func (s *RetrievalService) Retrieve(
	ctx context.Context, sessionID, query string, k int,
) (*domain.GroundingContext, error) {
	if k <= 0 {
		k = s.defaultK
	}
	if strings.TrimSpace(query) == "" {
		query = OverviewQuery
	}
	logger.Debug("Retrieving %d chunks for session %s, query %q", k, sessionID, query)

	results, err := s.index.Query(ctx, sessionID, query, k)
	if err != nil {
		return nil, err
	}

	return s.assemble(results), nil
}

// assemble builds the context string and the parallel source previews.
func (s *RetrievalService) assemble(results []domain.RetrievalResult) *domain.GroundingContext {
	blocks := make([]string, 0, len(results))
	sources := make([]domain.SourcePreview, 0, len(results))

	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("[p.%d] %s", r.Metadata.Page, r.Text))
		sources = append(sources, domain.SourcePreview{
			Page:    r.Metadata.Page,
			Excerpt: Excerpt(r.Text, s.previewChars),
		})
	}

	context := NoContextPlaceholder
	if len(blocks) > 0 {
		context = strings.Join(blocks, contextSeparator)
	}

	return &domain.GroundingContext{
		Context: context,
		Sources: sources,
		Results: results,
	}
}

// Excerpt truncates text to limit characters, appending an ellipsis when it cut anything.
func Excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + ellipsis
}

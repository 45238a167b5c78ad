package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
	"github.com/custodia-labs/papermentor/internal/core/ports/driving"
	"github.com/custodia-labs/papermentor/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService turns an uploaded PDF into an indexed, summarised session.
type IngestService struct {
	files     driven.FileStore
	extractor driven.PageExtractor
	pipeline  driven.PostProcessorPipeline
	index     *VectorIndex
	summary   *SummaryService
	sessions  driven.SessionStore

	newID func() string
	now   func() time.Time
}

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithSessionIDs overrides how session ids are minted.
func WithSessionIDs(fn func() string) IngestOption {
	return func(s *IngestService) {
		s.newID = fn
	}
}

// WithClock overrides the clock used for session timestamps.
func WithClock(fn func() time.Time) IngestOption {
	return func(s *IngestService) {
		s.now = fn
	}
}

// NewIngestService creates an ingestion service.
// The summary service and session store are optional.
func NewIngestService(
	files driven.FileStore,
	extractor driven.PageExtractor,
	pipeline driven.PostProcessorPipeline,
	index *VectorIndex,
	summary *SummaryService,
	sessions driven.SessionStore,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		files:     files,
		extractor: extractor,
		pipeline:  pipeline,
		index:     index,
		summary:   summary,
		sessions:  sessions,
		newID:     NewSessionID,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSessionID mints a 32 character hex session id.
func NewSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Ingest persists, extracts, chunks and indexes one paper, then summarises it.
// Any failure before indexing completes removes what was written and
// returns no session; a failed summary only degrades the summary text.
func (s *IngestService) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	logger.Section("Ingest")

	if !strings.HasSuffix(strings.ToLower(req.Filename), ".pdf") {
		return nil, fmt.Errorf("%w: please upload a PDF file", domain.ErrInvalidInput)
	}
	if len(req.Content) == 0 {
		return nil, fmt.Errorf("%w: uploaded file is empty", domain.ErrInvalidInput)
	}

	sessionID := s.newID()
	logger.Debug("Session %s for %s (%d bytes)", sessionID, req.Filename, len(req.Content))

	done := logger.Stage("persist")
	path, err := s.files.Persist(ctx, sessionID+".pdf", req.Content)
	done()
	if err != nil {
		return nil, fmt.Errorf("%w: persist upload: %w", domain.ErrStorage, err)
	}

	done = logger.Stage("extract")
	pages, err := s.extractor.ExtractPages(ctx, path)
	done()
	if err != nil {
		s.discard(ctx, sessionID, path, false)
		return nil, classifyExtraction(err)
	}

	paper := &domain.Paper{
		SessionID: sessionID,
		Filename:  filepath.Base(req.Filename),
		Path:      path,
		Pages:     pages,
	}

	chunks, err := s.pipeline.Process(ctx, paper)
	if err != nil {
		s.discard(ctx, sessionID, path, false)
		return nil, fmt.Errorf("chunking: %w", err)
	}
	if len(chunks) == 0 {
		s.discard(ctx, sessionID, path, false)
		return nil, domain.ErrNoExtractableText
	}
	logger.Debug("%d pages, %d chunks", paper.PageCount(), len(chunks))

	done = logger.Stage("index")
	indexed, err := s.index.Upsert(ctx, sessionID, chunks)
	done()
	if err != nil {
		s.discard(ctx, sessionID, path, true)
		return nil, err
	}

	result := &domain.IngestResult{
		SessionID:  sessionID,
		PageCount:  paper.PageCount(),
		ChunkCount: indexed,
	}

	done = logger.Stage("summary")
	result.Summary, result.SummaryErr = s.summarise(ctx, paper)
	done()

	if s.sessions != nil {
		session := &domain.Session{
			ID:           sessionID,
			Filename:     paper.Filename,
			DocumentPath: path,
			PageCount:    result.PageCount,
			ChunkCount:   result.ChunkCount,
			Summary:      result.Summary,
			CreatedAt:    s.now().UTC(),
		}
		if err := s.sessions.SaveSession(ctx, session); err != nil {
			// The index is already usable; a missing catalogue entry only hides it from listings.
			logger.Warn("Session %s indexed but not recorded: %v", sessionID, err)
		}
	}

	return result, nil
}

// summarise never fails: errors become the placeholder text.
func (s *IngestService) summarise(ctx context.Context, paper *domain.Paper) (string, error) {
	if s.summary == nil {
		err := fmt.Errorf("%w: %w", domain.ErrSummaryGeneration, domain.ErrLLMUnavailable)
		return SummaryPlaceholder(err), err
	}
	summary, err := s.summary.Summarise(ctx, paper.FullText())
	if err != nil {
		logger.Warn("Summary for %s failed: %v", paper.SessionID, err)
		return SummaryPlaceholder(err), err
	}
	return summary, nil
}

// discard removes a failed upload so no partial session stays queryable.
func (s *IngestService) discard(ctx context.Context, sessionID, path string, indexed bool) {
	if indexed {
		if err := s.index.Drop(ctx, sessionID); err != nil {
			logger.Warn("Could not drop collection for failed session %s: %v", sessionID, err)
		}
	}
	if err := s.files.Remove(ctx, path); err != nil {
		logger.Warn("Could not remove upload %s: %v", path, err)
	}
}

// classifyExtraction keeps already classified errors as they are and
// treats anything else from the extractor as an unreadable document.
func classifyExtraction(err error) error {
	switch {
	case errors.Is(err, domain.ErrDecryption),
		errors.Is(err, domain.ErrUnreadablePDF),
		errors.Is(err, domain.ErrExtractorUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrUnreadablePDF, err)
}

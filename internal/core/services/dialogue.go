package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
	"github.com/custodia-labs/papermentor/internal/core/ports/driving"
	"github.com/custodia-labs/papermentor/internal/logger"
)

// Ensure DialogueService implements the interface.
var _ driving.ChatService = (*DialogueService)(nil)

// OverviewQuery is the retrieval query used when the user said nothing.
const OverviewQuery = "paper overview"

// DialogueService runs the mentor conversation one turn at a time.
// It keeps no conversation state: the caller sends the full history every turn.
type DialogueService struct {
	retrieval   driving.RetrievalService
	llm         driven.LLMService
	prompts     *Prompts
	topK        int
	temperature float64
}

// NewDialogueService creates a dialogue service.
func NewDialogueService(
	retrieval driving.RetrievalService,
	llm driven.LLMService,
	prompts *Prompts,
	cfg domain.Config,
) *DialogueService {
	return &DialogueService{
		retrieval:   retrieval,
		llm:         llm,
		prompts:     prompts,
		topK:        cfg.TopK,
		temperature: cfg.ChatTemperature,
	}
}

// Respond retrieves context for this turn and asks the model for the mentor's reply.
func (s *DialogueService) Respond(ctx context.Context, req domain.ChatRequest) (*domain.ChatReply, error) {
	logger.Section("Mentor Turn")

	if strings.TrimSpace(req.SessionID) == "" {
		return nil, fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationProvider, domain.ErrLLMUnavailable)
	}

	message := strings.TrimSpace(req.UserMessage)
	query := message
	if query == "" {
		query = OverviewQuery
	}

	grounding, err := s.retrieval.Retrieve(ctx, req.SessionID, query, s.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}
	logger.Debug("Grounded on %d chunks", len(grounding.Results))

	messages := s.BuildMessages(grounding.Context, req.History, s.newTurn(message, req.Lead))

	reply, err := s.llm.Chat(ctx, messages, driven.ChatOptions{Temperature: s.temperature})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationProvider, err)
	}

	return &domain.ChatReply{
		Reply:   reply,
		Sources: grounding.Sources,
	}, nil
}

// BuildMessages lays out a generation request: persona, grounding context,
// the caller's history unchanged and in order, then the new turn.
func (s *DialogueService) BuildMessages(context string, history []domain.Turn, turn string) []driven.ChatMessage {
	messages := make([]driven.ChatMessage, 0, len(history)+3)
	messages = append(messages,
		driven.ChatMessage{Role: domain.RoleSystem, Content: s.prompts.MentorSystem()},
		driven.ChatMessage{Role: domain.RoleSystem, Content: s.prompts.ContextHeader(context)},
	)
	for _, t := range history {
		messages = append(messages, driven.ChatMessage{Role: t.Role, Content: t.Content})
	}
	return append(messages, driven.ChatMessage{Role: domain.RoleUser, Content: turn})
}

// newTurn picks the final user turn: the lead instruction when the mentor
// opens or the user sent nothing, the trimmed message otherwise.
func (s *DialogueService) newTurn(trimmed string, lead bool) string {
	if lead || trimmed == "" {
		return s.prompts.LeadTurn()
	}
	return trimmed
}

package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
)

// SummaryService writes the plain-language summary shown after upload.
type SummaryService struct {
	llm         driven.LLMService
	prompts     *Prompts
	prefixChars int
	temperature float64
}

// NewSummaryService creates a summary service.
func NewSummaryService(llm driven.LLMService, prompts *Prompts, cfg domain.Config) *SummaryService {
	prefix := cfg.SummaryPrefixChars
	if prefix <= 0 {
		prefix = domain.DefaultSummaryPrefixChars
	}
	return &SummaryService{
		llm:         llm,
		prompts:     prompts,
		prefixChars: prefix,
		temperature: cfg.SummaryTemperature,
	}
}

// Summarise asks the model for an accessible summary of the start of the paper.
// Only the first prefixChars characters of fullText are sent.
func (s *SummaryService) Summarise(ctx context.Context, fullText string) (string, error) {
	if s.llm == nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSummaryGeneration, domain.ErrLLMUnavailable)
	}

	text := fullText
	if runes := []rune(fullText); len(runes) > s.prefixChars {
		text = string(runes[:s.prefixChars])
	}

	messages := []driven.ChatMessage{
		{Role: domain.RoleSystem, Content: s.prompts.SummarySystem()},
		{Role: domain.RoleUser, Content: s.prompts.SummaryRequest(text)},
	}

	summary, err := s.llm.Chat(ctx, messages, driven.ChatOptions{Temperature: s.temperature})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSummaryGeneration, err)
	}
	return summary, nil
}

// SummaryPlaceholder is the summary shown when generation failed.
func SummaryPlaceholder(err error) string {
	return fmt.Sprintf("Summary unavailable due to an error: %v", err)
}

// Package langchain provides an LLM service adapter that drives an Ollama
// server through LangChainGo.
package langchain

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// providerName identifies this adapter in errors.
const providerName = "langchain"

// Default configuration values.
const (
	DefaultServerURL = "http://localhost:11434"
	DefaultLLMModel  = "llama3.2"
	pingTimeout      = 5 * time.Second
)

// LLMConfig holds configuration for the LangChainGo LLM service.
type LLMConfig struct {
	// ServerURL is the Ollama server URL (default: http://localhost:11434).
	ServerURL string

	// Model is the model to use (default: llama3.2).
	Model string
}

// LLMService provides chat through a LangChainGo model.
type LLMService struct {
	llm       llms.Model
	serverURL string
	model     string
}

// NewLLMService creates a new LangChainGo-backed LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}

	llm, err := ollama.New(ollama.WithModel(cfg.Model), ollama.WithServerURL(cfg.ServerURL))
	if err != nil {
		return nil, fmt.Errorf("langchain: failed to initialize LLM: %w", err)
	}

	return &LLMService{llm: llm, serverURL: cfg.ServerURL, model: cfg.Model}, nil
}

// Chat converts the conversation to LangChainGo message content and generates a reply.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	callOpts := []llms.CallOption{llms.WithTemperature(opts.Temperature)}
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(opts.MaxTokens))
	}

	resp, err := s.llm.GenerateContent(ctx, ToMessageContent(messages), callOpts...)
	if err != nil {
		return "", domain.NewNetworkError(providerName, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", domain.NewProviderError(providerName, 0, "no choices returned")
	}
	return resp.Choices[0].Content, nil
}

// ToMessageContent maps chat roles onto LangChainGo message types.
func ToMessageContent(messages []driven.ChatMessage) []llms.MessageContent {
	content := make([]llms.MessageContent, len(messages))
	for i, msg := range messages {
		var kind llms.ChatMessageType
		switch msg.Role {
		case domain.RoleSystem:
			kind = llms.ChatMessageTypeSystem
		case domain.RoleAssistant:
			kind = llms.ChatMessageTypeAI
		default:
			kind = llms.ChatMessageTypeHuman
		}
		content[i] = llms.TextParts(kind, msg.Content)
	}
	return content
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping checks the Ollama server behind LangChainGo is reachable.
func (s *LLMService) Ping(ctx context.Context) error {
	return PingServer(ctx, s.serverURL)
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}

// PingServer issues GET /api/tags against an Ollama server.
func PingServer(ctx context.Context, serverURL string) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serverURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("langchain: failed to create ping request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return domain.NewNetworkError(providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.NewProviderError(providerName, resp.StatusCode, string(body))
	}
	return nil
}

package driven

import (
	"context"

	"github.com/custodia-labs/papermentor/internal/core/domain"
)

// LLMService turns a conversation into a reply.
//
// Implementations may include:
//   - OpenAI (GPT-4o, or any compatible endpoint)
//   - Anthropic (Claude)
//   - Ollama (local models)
//   - Gemini
type LLMService interface {
	// Chat conducts a multi-turn conversation and returns the reply text.
	// An empty reply is not an error.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of system, user or assistant.
	Role domain.Role

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate. Zero leaves it to the provider.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

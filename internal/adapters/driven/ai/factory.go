// Package ai builds embedding and chat adapters from settings.
package ai

import (
	"context"
	"fmt"
	"time"

	geminiembed "github.com/custodia-labs/papermentor/internal/adapters/driven/embedding/gemini"
	langchainembed "github.com/custodia-labs/papermentor/internal/adapters/driven/embedding/langchain"
	ollamaembed "github.com/custodia-labs/papermentor/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/papermentor/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/papermentor/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/papermentor/internal/adapters/driven/llm/gemini"
	langchainllm "github.com/custodia-labs/papermentor/internal/adapters/driven/llm/langchain"
	ollamallm "github.com/custodia-labs/papermentor/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/papermentor/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// fixHint is appended to construction failures.
const fixHint = "Run 'papermentor settings' to fix"

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Warnings         []string // Non-fatal issues found while building the services.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		_ = r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		_ = r.LLMService.Close()
	}
}

// Init builds both services from settings, paced by the rate limit settings.
// Unconfigured providers leave the matching field nil and add a warning.
func Init(settings *domain.AppSettings) (*InitResult, error) {
	result := &InitResult{}

	embedder, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	if embedder == nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("embedding provider %s is not configured", settings.Embedding.Provider))
	}

	llm, err := CreateLLMService(&settings.LLM)
	if err != nil {
		if embedder != nil {
			_ = embedder.Close()
		}
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	if llm == nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("llm provider %s is not configured", settings.LLM.Provider))
	}

	if settings.RateLimit.RequestsPerSecond > 0 {
		limiter := NewRateLimiter(settings.RateLimit)
		if embedder != nil {
			embedder = NewRateLimitedEmbedding(embedder, limiter)
		}
		if llm != nil {
			llm = NewRateLimitedLLM(llm, limiter)
		}
	}

	result.EmbeddingService = embedder
	result.LLMService = llm
	return result, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s",
			domain.ErrEmbeddingUnavailable, err, fixHint)
	}

	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s",
			domain.ErrLLMUnavailable, err, fixHint)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || settings.Provider == "" {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("anthropic does not support embeddings, use openai, gemini, ollama or langchain")
	case domain.AIProviderOllama, domain.AIProviderOpenAI, domain.AIProviderGemini, domain.AIProviderLangChain:
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}

	if !settings.IsConfigured() {
		return nil, nil
	}

	dimensions := domain.EmbeddingDimensions()[settings.Model]

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		})

	case domain.AIProviderGemini:
		return geminiembed.NewEmbeddingService(context.Background(), geminiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		})

	default:
		return langchainembed.NewEmbeddingService(langchainembed.Config{
			ServerURL:  settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		})
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || settings.Provider == "" {
		return nil, nil
	}
	if !settings.Provider.IsValid() {
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGemini:
		return geminillm.NewLLMService(context.Background(), geminillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return langchainllm.NewLLMService(langchainllm.LLMConfig{
			ServerURL: settings.BaseURL,
			Model:     settings.Model,
		})
	}
}

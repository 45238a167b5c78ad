package ai

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
)

// Providers builds the embedding and chat services on first use.
// Concurrent first callers share a single construction; every later call
// reuses the same handles.
type Providers struct {
	settings *domain.AppSettings
	build    func(*domain.AppSettings) (*InitResult, error)

	once   sync.Once
	mu     sync.Mutex
	result *InitResult
	err    error
}

// NewProviders creates lazily built provider handles for the given settings.
func NewProviders(settings *domain.AppSettings) *Providers {
	return &Providers{
		settings: settings,
		build:    Init,
	}
}

func (p *Providers) resolve() (*InitResult, error) {
	p.once.Do(func() {
		result, err := p.build(p.settings)
		p.mu.Lock()
		p.result, p.err = result, err
		p.mu.Unlock()
	})
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result, p.err
}

// Embedding returns a handle that builds the embedding service on first use.
func (p *Providers) Embedding() driven.EmbeddingService {
	return &LazyEmbedding{providers: p}
}

// LLM returns a handle that builds the chat service on first use.
func (p *Providers) LLM() driven.LLMService {
	return &LazyLLM{providers: p}
}

// Warnings forces construction and reports what is not configured.
func (p *Providers) Warnings() ([]string, error) {
	result, err := p.resolve()
	if err != nil {
		return nil, err
	}
	return result.Warnings, nil
}

// Close releases whatever has been built so far.
func (p *Providers) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.result != nil {
		p.result.Close()
	}
}

func (p *Providers) embedding() (driven.EmbeddingService, error) {
	result, err := p.resolve()
	if err != nil {
		return nil, err
	}
	if result.EmbeddingService == nil {
		return nil, fmt.Errorf("%w: provider %s is not configured. %s",
			domain.ErrEmbeddingUnavailable, p.settings.Embedding.Provider, fixHint)
	}
	return result.EmbeddingService, nil
}

func (p *Providers) llm() (driven.LLMService, error) {
	result, err := p.resolve()
	if err != nil {
		return nil, err
	}
	if result.LLMService == nil {
		return nil, fmt.Errorf("%w: provider %s is not configured. %s",
			domain.ErrLLMUnavailable, p.settings.LLM.Provider, fixHint)
	}
	return result.LLMService, nil
}

// LazyEmbedding is an EmbeddingService whose client is built on first use.
type LazyEmbedding struct {
	providers *Providers
}

// Ensure LazyEmbedding implements the interface.
var _ driven.EmbeddingService = (*LazyEmbedding)(nil)

// Embed builds the service if needed and embeds one text.
func (l *LazyEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	svc, err := l.providers.embedding()
	if err != nil {
		return nil, err
	}
	return svc.Embed(ctx, text)
}

// EmbedBatch builds the service if needed and embeds the texts in order.
func (l *LazyEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	svc, err := l.providers.embedding()
	if err != nil {
		return nil, err
	}
	return svc.EmbedBatch(ctx, texts)
}

// Dimensions returns zero while the service cannot be built.
func (l *LazyEmbedding) Dimensions() int {
	svc, err := l.providers.embedding()
	if err != nil {
		return 0
	}
	return svc.Dimensions()
}

// ModelName returns the configured model without building the client.
func (l *LazyEmbedding) ModelName() string {
	return l.providers.settings.Embedding.Model
}

// Ping builds the service if needed and checks it is reachable.
func (l *LazyEmbedding) Ping(ctx context.Context) error {
	svc, err := l.providers.embedding()
	if err != nil {
		return err
	}
	return svc.Ping(ctx)
}

// Close is a no-op; Providers.Close owns the client.
func (l *LazyEmbedding) Close() error {
	return nil
}

// LazyLLM is an LLMService whose client is built on first use.
type LazyLLM struct {
	providers *Providers
}

// Ensure LazyLLM implements the interface.
var _ driven.LLMService = (*LazyLLM)(nil)

// Chat builds the service if needed and runs the conversation.
func (l *LazyLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	svc, err := l.providers.llm()
	if err != nil {
		return "", err
	}
	return svc.Chat(ctx, messages, opts)
}

// ModelName returns the configured model without building the client.
func (l *LazyLLM) ModelName() string {
	return l.providers.settings.LLM.Model
}

// Ping builds the service if needed and checks it is reachable.
func (l *LazyLLM) Ping(ctx context.Context) error {
	svc, err := l.providers.llm()
	if err != nil {
		return err
	}
	return svc.Ping(ctx)
}

// Close is a no-op; Providers.Close owns the client.
func (l *LazyLLM) Close() error {
	return nil
}

// Package langchain provides an embedding service adapter that drives an
// Ollama server through LangChainGo's embeddings package.
package langchain

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"

	llmlangchain "github.com/custodia-labs/papermentor/internal/adapters/driven/llm/langchain"
	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// providerName identifies this adapter in errors.
const providerName = "langchain"

// Default configuration values.
const (
	DefaultModel      = "nomic-embed-text"
	DefaultDimensions = 768
)

// Config holds configuration for the LangChainGo embedding service.
type Config struct {
	// ServerURL is the Ollama server URL (default: http://localhost:11434).
	ServerURL string

	// Model is the embedding model (default: nomic-embed-text).
	Model string

	// Dimensions is the embedding vector size.
	Dimensions int

	// BatchSize is how many texts LangChainGo sends per request. Zero keeps its default.
	BatchSize int
}

// EmbeddingService generates embeddings through a LangChainGo embedder.
type EmbeddingService struct {
	embedder   embeddings.Embedder
	serverURL  string
	model      string
	dimensions int
}

// NewEmbeddingService creates a new LangChainGo-backed embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.ServerURL == "" {
		cfg.ServerURL = llmlangchain.DefaultServerURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	client, err := ollama.New(ollama.WithModel(cfg.Model), ollama.WithServerURL(cfg.ServerURL))
	if err != nil {
		return nil, fmt.Errorf("langchain: failed to initialize embedder client: %w", err)
	}

	opts := []embeddings.Option{embeddings.WithStripNewLines(false)}
	if cfg.BatchSize > 0 {
		opts = append(opts, embeddings.WithBatchSize(cfg.BatchSize))
	}
	embedder, err := embeddings.NewEmbedder(client, opts...)
	if err != nil {
		return nil, fmt.Errorf("langchain: failed to initialize embedder: %w", err)
	}

	return &EmbeddingService{
		embedder:   embedder,
		serverURL:  cfg.ServerURL,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, domain.NewNetworkError(providerName, err)
	}
	return vec, nil
}

// EmbedBatch generates one embedding per text, in input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, domain.NewNetworkError(providerName, err)
	}
	if len(vecs) != len(texts) {
		return nil, domain.NewProviderError(providerName, 0,
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(vecs)))
	}
	return vecs, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping checks the Ollama server behind LangChainGo is reachable.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return llmlangchain.PingServer(ctx, s.serverURL)
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

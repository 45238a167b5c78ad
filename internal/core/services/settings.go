package services

import (
	"fmt"
	"slices"

	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
	"github.com/custodia-labs/papermentor/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyEmbedProvider      = "embedding.provider"
	KeyEmbedModel         = "embedding.model"
	KeyEmbedBaseURL       = "embedding.base_url"
	KeyEmbedAPIKey        = "embedding.api_key"
	KeyLLMProvider        = "llm.provider"
	KeyLLMModel           = "llm.model"
	KeyLLMBaseURL         = "llm.base_url"
	KeyLLMAPIKey          = "llm.api_key"
	KeyDBDirectory        = "pipeline.db_dir"
	KeyUploadDirectory    = "pipeline.upload_dir"
	KeyMaxChunks          = "pipeline.max_chunks"
	KeyBatchSize          = "pipeline.batch_size"
	KeyChunkSize          = "pipeline.chunk_size"
	KeyChunkOverlap       = "pipeline.chunk_overlap"
	KeyTopK               = "pipeline.top_k"
	KeyPreviewChars       = "pipeline.preview_chars"
	KeySummaryChars       = "pipeline.summary_chars"
	KeyChatTemperature    = "pipeline.chat_temperature"
	KeySummaryTemperature = "pipeline.summary_temperature"
	KeyStorageBackend     = "storage.backend"
	KeyChromaURL          = "storage.chroma_url"
	KeyPostgresDSN        = "storage.postgres_dsn"
	KeyRateLimitRPS       = "ratelimit.requests_per_second"
	KeyRateLimitBurst     = "ratelimit.burst"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
// aiValidator may be nil, in which case connectivity is never checked.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
// Missing or invalid values fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()
	dp := defaults.Pipeline

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(KeyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(KeyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(KeyEmbedBaseURL), // Empty is valid for cloud providers
			APIKey:   s.configStore.GetString(KeyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(KeyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(KeyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(KeyLLMBaseURL),
			APIKey:   s.configStore.GetString(KeyLLMAPIKey),
		},
		Storage: domain.StorageSettings{
			Backend:     s.getBackend(defaults.Storage.Backend),
			ChromaURL:   s.getString(KeyChromaURL, defaults.Storage.ChromaURL),
			PostgresDSN: s.configStore.GetString(KeyPostgresDSN),
		},
		RateLimit: domain.RateLimitSettings{
			RequestsPerSecond: s.getFloat(KeyRateLimitRPS, defaults.RateLimit.RequestsPerSecond),
			Burst:             s.getInt(KeyRateLimitBurst, defaults.RateLimit.Burst),
		},
	}

	settings.Pipeline = domain.Config{
		EmbeddingModel:     settings.Embedding.Model,
		GenerationModel:    settings.LLM.Model,
		DBDirectory:        s.getString(KeyDBDirectory, dp.DBDirectory),
		UploadDirectory:    s.getString(KeyUploadDirectory, dp.UploadDirectory),
		MaxChunksPerUpload: max(0, s.getInt(KeyMaxChunks, dp.MaxChunksPerUpload)),
		BatchSize:          s.getInt(KeyBatchSize, dp.BatchSize),
		ChunkSize:          s.getInt(KeyChunkSize, dp.ChunkSize),
		ChunkOverlap:       s.getInt(KeyChunkOverlap, dp.ChunkOverlap),
		TopK:               s.getInt(KeyTopK, dp.TopK),
		PreviewChars:       s.getInt(KeyPreviewChars, dp.PreviewChars),
		SummaryPrefixChars: s.getInt(KeySummaryChars, dp.SummaryPrefixChars),
		ChatTemperature:    s.getFloat(KeyChatTemperature, dp.ChatTemperature),
		SummaryTemperature: s.getFloat(KeySummaryTemperature, dp.SummaryTemperature),
		VectorBackend:      settings.Storage.Backend,
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{KeyEmbedProvider, settings.Embedding.Provider.String()},
		{KeyEmbedModel, settings.Embedding.Model},
		{KeyEmbedBaseURL, settings.Embedding.BaseURL},
		{KeyLLMProvider, settings.LLM.Provider.String()},
		{KeyLLMModel, settings.LLM.Model},
		{KeyLLMBaseURL, settings.LLM.BaseURL},
		{KeyDBDirectory, settings.Pipeline.DBDirectory},
		{KeyUploadDirectory, settings.Pipeline.UploadDirectory},
		{KeyMaxChunks, settings.Pipeline.MaxChunksPerUpload},
		{KeyBatchSize, settings.Pipeline.BatchSize},
		{KeyChunkSize, settings.Pipeline.ChunkSize},
		{KeyChunkOverlap, settings.Pipeline.ChunkOverlap},
		{KeyTopK, settings.Pipeline.TopK},
		{KeyPreviewChars, settings.Pipeline.PreviewChars},
		{KeySummaryChars, settings.Pipeline.SummaryPrefixChars},
		{KeyChatTemperature, settings.Pipeline.ChatTemperature},
		{KeySummaryTemperature, settings.Pipeline.SummaryTemperature},
		{KeyRateLimitRPS, settings.RateLimit.RequestsPerSecond},
		{KeyRateLimitBurst, settings.RateLimit.Burst},
		{KeyStorageBackend, settings.Storage.Backend.String()},
		{KeyChromaURL, settings.Storage.ChromaURL},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Secrets are only written when set.
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(KeyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(KeyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}
	if settings.Storage.PostgresDSN != "" {
		if err := s.configStore.Set(KeyPostgresDSN, settings.Storage.PostgresDSN); err != nil {
			return fmt.Errorf("save postgres dsn: %w", err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetVectorBackend selects the vector store.
func (s *SettingsService) SetVectorBackend(backend domain.VectorBackend) error {
	if !backend.IsValid() {
		return fmt.Errorf("invalid vector backend: %s", backend)
	}
	return s.configStore.Set(KeyStorageBackend, backend.String())
}

// Validate checks that the current settings can run the pipeline.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if err := settings.Pipeline.Validate(); err != nil {
		return err
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %s is not configured",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider %s is not configured",
			domain.ErrLLMUnavailable, settings.LLM.Provider)
	}
	if settings.Storage.Backend == domain.VectorBackendPGVector && settings.Storage.PostgresDSN == "" {
		return fmt.Errorf("%w: pgvector backend requires %s", domain.ErrInvalidConfig, KeyPostgresDSN)
	}

	return nil
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func modelOrDefault(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}

// baseURLFor keeps a custom endpoint for local providers and clears it for cloud ones.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return "http://localhost:11434"
	}
	return current
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	backend := domain.VectorBackend(s.configStore.GetString(KeyStorageBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

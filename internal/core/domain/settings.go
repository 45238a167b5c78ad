package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API, or any OpenAI-compatible endpoint.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google's Gemini API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderLangChain is an Ollama server driven through LangChainGo.
	AIProviderLangChain AIProvider = "langchain"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini, AIProviderLangChain:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderLangChain
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	case AIProviderLangChain:
		return "LangChainGo over Ollama (local)"
	default:
		return unknownDescription
	}
}

// VectorBackend identifies a vector store implementation.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendSQLite keeps collections in a local SQLite database.
	VectorBackendSQLite VectorBackend = "sqlite"

	// VectorBackendMemory keeps collections in process memory only.
	VectorBackendMemory VectorBackend = "memory"

	// VectorBackendChroma talks to a Chroma server.
	VectorBackendChroma VectorBackend = "chroma"

	// VectorBackendPGVector stores vectors in PostgreSQL with the pgvector extension.
	VectorBackendPGVector VectorBackend = "pgvector"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendSQLite, VectorBackendMemory, VectorBackendChroma, VectorBackendPGVector:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b VectorBackend) Description() string {
	switch b {
	case VectorBackendSQLite:
		return "SQLite (local file)"
	case VectorBackendMemory:
		return "Memory (lost on exit)"
	case VectorBackendChroma:
		return "Chroma (server)"
	case VectorBackendPGVector:
		return "PostgreSQL + pgvector"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// StorageSettings locates the vector and session stores.
type StorageSettings struct {
	// Backend selects the vector store.
	Backend VectorBackend

	// ChromaURL is the Chroma server address for the chroma backend.
	ChromaURL string

	// PostgresDSN is the connection string for the pgvector backend.
	PostgresDSN string
}

// RateLimitSettings paces provider calls on the client side.
type RateLimitSettings struct {
	// RequestsPerSecond is the steady request rate. Zero disables pacing.
	RequestsPerSecond float64

	// Burst is how many requests may be issued at once.
	Burst int
}

// AppSettings holds all application settings.
type AppSettings struct {
	Pipeline  Config
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Storage   StorageSettings
	RateLimit RateLimitSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Both providers default to OpenAI with no key, so they report unconfigured
// until a key arrives through the config file or the environment.
func DefaultAppSettings() AppSettings {
	cfg := DefaultConfig()
	return AppSettings{
		Pipeline: cfg,
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    cfg.EmbeddingModel,
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    cfg.GenerationModel,
		},
		Storage: StorageSettings{
			Backend:   VectorBackendSQLite,
			ChromaURL: "http://localhost:8000",
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
		AIProviderLangChain,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGemini,
		AIProviderLangChain,
	}
}

// AllVectorBackends returns every vector backend.
func AllVectorBackends() []VectorBackend {
	return []VectorBackend{
		VectorBackendSQLite,
		VectorBackendMemory,
		VectorBackendChroma,
		VectorBackendPGVector,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "nomic-embed-text",
		AIProviderOpenAI:    "text-embedding-3-small",
		AIProviderGemini:    "text-embedding-004",
		AIProviderLangChain: "nomic-embed-text",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-2.0-flash",
		AIProviderLangChain: "llama3.2",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"text-embedding-004": 768,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config so processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration keyed by processor name.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfigFor builds the chunk-then-cap pipeline for a configuration.
func PipelineConfigFor(cfg Config) PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker", "limit"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": cfg.ChunkSize,
				"overlap":    cfg.ChunkOverlap,
			},
			"limit": {
				"max_chunks": cfg.MaxChunksPerUpload,
			},
		},
	}
}

package domain

import "fmt"

// Pipeline defaults.
const (
	DefaultChunkSize          = 1200
	DefaultChunkOverlap       = 200
	DefaultBatchSize          = 64
	DefaultTopK               = 4
	DefaultPreviewChars       = 220
	DefaultSummaryPrefixChars = 30000
	DefaultChatTemperature    = 0.4
	DefaultSummaryTemperature = 0.3
	DefaultDBDirectory        = "./data/chroma"
	DefaultUploadDirectory    = "./data/uploads"
)

// Config is the explicit configuration passed into the pipeline components.
type Config struct {
	// EmbeddingModel names the model used to embed chunks and queries.
	EmbeddingModel string

	// GenerationModel names the model used for chat replies and summaries.
	GenerationModel string

	// DBDirectory is where the vector store keeps its data.
	DBDirectory string

	// UploadDirectory is where raw PDFs are persisted.
	UploadDirectory string

	// MaxChunksPerUpload caps how many chunks one upload indexes. Zero means no cap.
	MaxChunksPerUpload int

	// BatchSize bounds how many texts are embedded per provider request.
	BatchSize int

	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int

	// ChunkOverlap is how many characters consecutive chunks share.
	ChunkOverlap int

	// TopK is the default number of chunks retrieved per turn.
	TopK int

	// PreviewChars caps source excerpts shown to the user.
	PreviewChars int

	// SummaryPrefixChars bounds the text handed to the summariser.
	SummaryPrefixChars int

	// ChatTemperature is the sampling temperature for mentor replies.
	ChatTemperature float64

	// SummaryTemperature is the sampling temperature for summaries.
	SummaryTemperature float64

	// VectorBackend selects the vector store implementation.
	VectorBackend VectorBackend
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		EmbeddingModel:     "text-embedding-3-small",
		GenerationModel:    "gpt-4o-mini",
		DBDirectory:        DefaultDBDirectory,
		UploadDirectory:    DefaultUploadDirectory,
		BatchSize:          DefaultBatchSize,
		ChunkSize:          DefaultChunkSize,
		ChunkOverlap:       DefaultChunkOverlap,
		TopK:               DefaultTopK,
		PreviewChars:       DefaultPreviewChars,
		SummaryPrefixChars: DefaultSummaryPrefixChars,
		ChatTemperature:    DefaultChatTemperature,
		SummaryTemperature: DefaultSummaryTemperature,
		VectorBackend:      VectorBackendSQLite,
	}
}

// Validate checks the values the pipeline relies on for progress and bounds.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d",
			ErrInvalidConfig, c.ChunkSize, c.ChunkOverlap)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidConfig, c.BatchSize)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: top k must be positive, got %d", ErrInvalidConfig, c.TopK)
	}
	if c.MaxChunksPerUpload < 0 {
		return fmt.Errorf("%w: max chunks per upload cannot be negative", ErrInvalidConfig)
	}
	if !c.VectorBackend.IsValid() {
		return fmt.Errorf("%w: unknown vector backend %q", ErrInvalidConfig, c.VectorBackend)
	}
	return nil
}

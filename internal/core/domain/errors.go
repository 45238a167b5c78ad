package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates configuration values that cannot be used together.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrStorage indicates the vector or session store failed.
	ErrStorage = errors.New("storage failure")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Ingestion Errors.

	// ErrDecryption indicates the PDF is encrypted and cannot be opened with an empty password.
	ErrDecryption = errors.New("pdf is encrypted and could not be decrypted")

	// ErrUnreadablePDF indicates the PDF could not be parsed at all.
	ErrUnreadablePDF = errors.New("failed to read pdf")

	// ErrExtractorUnavailable indicates the text extraction tooling is missing
	// or failed to start. The document itself may be fine.
	ErrExtractorUnavailable = errors.New("pdf extractor unavailable")

	// ErrNoExtractableText indicates segmentation produced zero chunks.
	// Scanned or image-only papers end up here.
	ErrNoExtractableText = errors.New("no extractable text found in pdf")

	// Provider Errors.

	// ErrEmbeddingProvider indicates the embedding provider failed during upsert or query.
	ErrEmbeddingProvider = errors.New("embedding provider failure")

	// ErrSummaryGeneration indicates the summary could not be generated.
	// It never fails an ingestion.
	ErrSummaryGeneration = errors.New("summary generation failed")

	// ErrGenerationProvider indicates the generation provider failed to produce a reply.
	ErrGenerationProvider = errors.New("generation provider failure")
)

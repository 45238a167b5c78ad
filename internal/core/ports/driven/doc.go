// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - PageExtractor: Reads per-page text out of a PDF
//   - FileStore: Persists uploaded documents
//   - VectorStore: Per-session collections with nearest-neighbour search
//   - SessionStore: Catalogue of ingested papers
//   - EmbeddingService: Turns text into vectors
//   - LLMService: Turns a conversation into a reply
//   - PromptStore: Replaceable prompt templates
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven

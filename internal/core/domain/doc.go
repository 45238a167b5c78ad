// Package domain defines the core business entities for PaperMentor.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Session: One uploaded paper and its vector namespace
//   - Paper: Extracted page text on its way through ingestion
//   - Chunk: A bounded window of one page, the unit of retrieval
//   - Turn: One role-tagged message of a mentor conversation
//   - Config: The explicit pipeline configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
package domain

package mcp

import (
	"github.com/custodia-labs/papermentor/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat answers mentor turns.
	Chat driving.ChatService

	// Retrieval returns grounded passages.
	Retrieval driving.RetrievalService

	// Ingest indexes papers from local paths. Optional.
	Ingest driving.IngestService

	// Sessions lists ingested papers. Optional.
	Sessions driving.SessionService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}

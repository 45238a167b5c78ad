package httpapi

import (
	"github.com/custodia-labs/papermentor/internal/core/ports/driving"
)

// Ports aggregates the driving ports the HTTP API calls into.
type Ports struct {
	Ingest    driving.IngestService
	Chat      driving.ChatService
	Retrieval driving.RetrievalService
	Sessions  driving.SessionService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Ingest == nil {
		return ErrMissingIngestService
	}
	if p.Chat == nil {
		return ErrMissingChatService
	}
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	if p.Sessions == nil {
		return ErrMissingSessionService
	}
	return nil
}

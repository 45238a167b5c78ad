// Package tui provides an interactive terminal user interface for PaperMentor.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/papermentor/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat produces mentor replies.
	Chat driving.ChatService

	// Sessions lists the ingested papers.
	Sessions driving.SessionService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(chat driving.ChatService, sessions driving.SessionService) *Ports {
	return &Ports{
		Chat:     chat,
		Sessions: sessions,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	if p.Sessions == nil {
		return ErrMissingSessionService
	}
	return nil
}

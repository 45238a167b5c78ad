// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/papermentor/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewSessions lists ingested papers.
	ViewSessions ViewType = iota
	// ViewChat is the mentor conversation for one paper.
	ViewChat
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewSessions:
		return "sessions"
	case ViewChat:
		return "chat"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// SessionsLoaded carries the session catalogue from the service.
type SessionsLoaded struct {
	Sessions []domain.Session
	Err      error
}

// SessionSelected opens the chat for a session.
type SessionSelected struct {
	Session domain.Session
}

// ReplyReceived carries the mentor's answer back to the chat view.
type ReplyReceived struct {
	SessionID string
	Reply     *domain.ChatReply
	Err       error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

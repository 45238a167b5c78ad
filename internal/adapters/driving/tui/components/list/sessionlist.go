// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/papermentor/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/papermentor/internal/core/domain"
)

// linesPerSession is how many rows one rendered session takes.
const linesPerSession = 2

// SessionList displays ingested papers in a navigable list.
type SessionList struct {
	sessions []domain.Session
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewSessionList creates a new session list component.
func NewSessionList(s *styles.Styles) *SessionList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &SessionList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the session list.
func (l *SessionList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *SessionList) Update(msg tea.Msg) (*SessionList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the session list.
func (l *SessionList) View() string {
	if len(l.sessions) == 0 {
		return l.styles.Muted.Render("No papers yet. Run 'papermentor ingest <file.pdf>' to add one.")
	}

	lines := make([]string, 0, len(l.sessions)*linesPerSession+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Papers (%d)", len(l.sessions))), "")

	visible := (l.height - 2) / linesPerSession
	if visible < 1 {
		visible = 1
	}

	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.sessions))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderSession(i, &l.sessions[i]))
	}

	return strings.Join(lines, "\n")
}

// renderSession formats one session as a title line and a detail line.
func (l *SessionList) renderSession(index int, session *domain.Session) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	title := session.Filename
	if title == "" {
		title = session.ID
	}
	title = truncate(title, max(l.width-8, 10))

	var titleLine string
	if index == l.selected {
		titleLine = l.styles.Selected.Render(indicator + title)
	} else {
		titleLine = l.styles.Normal.Render(indicator + title)
	}

	detail := fmt.Sprintf("%d pages · %d chunks", session.PageCount, session.ChunkCount)
	if !session.CreatedAt.IsZero() {
		detail += " · " + session.CreatedAt.Local().Format("2006-01-02 15:04")
	}

	return titleLine + "\n" + l.styles.Muted.Render("    "+detail)
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// SetSessions replaces the listed sessions and resets the selection.
func (l *SessionList) SetSessions(sessions []domain.Session) {
	l.sessions = sessions
	l.selected = 0
}

// Sessions returns the listed sessions.
func (l *SessionList) Sessions() []domain.Session {
	return l.sessions
}

// Selected returns the index of the selected session.
func (l *SessionList) Selected() int {
	return l.selected
}

// SelectedSession returns the currently selected session, or nil if none.
func (l *SessionList) SelectedSession() *domain.Session {
	if len(l.sessions) == 0 || l.selected < 0 || l.selected >= len(l.sessions) {
		return nil
	}
	return &l.sessions[l.selected]
}

// MoveUp moves selection up.
func (l *SessionList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *SessionList) MoveDown() {
	if l.selected < len(l.sessions)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *SessionList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of sessions.
func (l *SessionList) Count() int {
	return len(l.sessions)
}

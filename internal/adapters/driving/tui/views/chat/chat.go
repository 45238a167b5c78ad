// Package chat provides the mentor conversation view for the TUI.
package chat

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/papermentor/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/papermentor/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/papermentor/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/papermentor/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/papermentor/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/ports/driving"
)

// chromeRows is the height taken by the header, input, status bar and gaps.
const chromeRows = 7

// View is a conversation with the mentor about one paper.
// It owns the history and sends all of it with every turn.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	chat   driving.ChatService
	ctx    context.Context

	session     domain.Session
	history     []domain.Turn
	sources     []domain.SourcePreview
	showSources bool

	pending     bool
	pendingText string
	err         error

	transcript viewport.Model
	input      *input.ChatInput
	bar        *status.Bar

	width  int
	height int
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, chat driving.ChatService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	km := keymap.DefaultKeyMap()

	bar := status.NewBar(s, km)
	bar.SetBindings(km.ChatHelp())

	return &View{
		styles:     s,
		keymap:     km,
		chat:       chat,
		ctx:        context.Background(),
		transcript: viewport.New(80, 24-chromeRows),
		input:      input.NewChatInput(s),
		bar:        bar,
		width:      80,
		height:     24,
	}
}

// SetContext sets the context used for service calls.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// SetSession starts a fresh conversation and asks the mentor to open it.
func (v *View) SetSession(session domain.Session) tea.Cmd {
	v.session = session
	v.history = nil
	v.sources = nil
	v.err = nil
	v.input.Reset()
	v.bar.Clear()
	v.bar.SetPaper(session.Filename)
	v.refresh()

	return v.send("", true)
}

// send asks the mentor for the next turn with the current history.
func (v *View) send(text string, lead bool) tea.Cmd {
	v.pending = true
	v.pendingText = text
	v.bar.SetState(status.StateThinking)
	v.refresh()

	req := domain.ChatRequest{
		SessionID:   v.session.ID,
		UserMessage: text,
		History:     slices.Clone(v.history),
		Lead:        lead,
	}
	chat, ctx := v.chat, v.ctx

	return func() tea.Msg {
		reply, err := chat.Respond(ctx, req)
		return messages.ReplyReceived{SessionID: req.SessionID, Reply: reply, Err: err}
	}
}

// Init implements the view lifecycle.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.ReplyReceived:
		v.receive(msg)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewSessions}
		}

	case keymap.Matches(key, v.keymap.ToggleSources):
		v.showSources = !v.showSources
		v.resize()
		return v, nil

	case keymap.Matches(key, v.keymap.ScrollUp), keymap.Matches(key, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd

	case keymap.Matches(key, v.keymap.Send):
		if v.pending || v.session.ID == "" {
			return v, nil
		}
		text := strings.TrimSpace(v.input.Value())
		v.input.Reset()
		return v, v.send(text, text == "")
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// receive applies a reply. The student's turn joins the history only once
// the mentor has answered it, so a failed turn can simply be retried.
func (v *View) receive(msg messages.ReplyReceived) {
	if msg.SessionID != v.session.ID {
		return
	}
	v.pending = false

	if msg.Err != nil {
		v.err = msg.Err
		v.bar.SetState(status.StateError)
		v.bar.SetMessage(msg.Err.Error())
		v.input.SetValue(v.pendingText)
		v.pendingText = ""
		v.refresh()
		return
	}

	if v.pendingText != "" {
		v.history = append(v.history, domain.Turn{Role: domain.RoleUser, Content: v.pendingText})
	}
	v.history = append(v.history, domain.Turn{Role: domain.RoleAssistant, Content: msg.Reply.Reply})
	v.sources = msg.Reply.Sources
	v.pendingText = ""
	v.err = nil

	v.bar.SetState(status.StateReady)
	v.bar.SetMessage("")
	v.bar.SetTurns(len(v.history))
	v.refresh()
}

// refresh re-renders the transcript and keeps the newest turn in view.
func (v *View) refresh() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

func (v *View) renderTranscript() string {
	width := max(v.width-4, 20)
	body := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	if v.session.Summary != "" {
		b.WriteString(v.styles.Subtitle.Render("Summary"))
		b.WriteString("\n")
		b.WriteString(body.Render(v.session.Summary))
		b.WriteString("\n\n")
	}

	for _, turn := range v.history {
		b.WriteString(v.renderTurn(turn.Role, turn.Content, body))
	}
	if v.pending {
		if v.pendingText != "" {
			b.WriteString(v.renderTurn(domain.RoleUser, v.pendingText, body))
		}
		b.WriteString(v.styles.Muted.Render("Mentor is thinking..."))
		b.WriteString("\n")
	}

	return b.String()
}

func (v *View) renderTurn(role domain.Role, content string, body lipgloss.Style) string {
	label := v.styles.MentorLabel.Render("Mentor")
	if role == domain.RoleUser {
		label = v.styles.StudentLabel.Render("You")
	}
	return label + "\n" + body.Render(content) + "\n\n"
}

func (v *View) renderSources() string {
	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render("Sources from last answer"))
	b.WriteString("\n")
	if len(v.sources) == 0 {
		b.WriteString(v.styles.Muted.Render("No sources available."))
		return b.String()
	}
	for i, src := range v.sources {
		tag := v.styles.PageTag.Render(fmt.Sprintf("Source %d (p.%d)", i+1, src.Page))
		b.WriteString(tag + " " + v.styles.Source.Render(src.Excerpt))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// View renders the conversation.
func (v *View) View() string {
	title := v.styles.Title.Render("PaperMentor") + v.styles.Muted.Render("  "+v.session.Filename)

	parts := []string{title, "", v.transcript.View()}
	if v.showSources {
		parts = append(parts, v.renderSources())
	}
	parts = append(parts, v.input.View(), v.bar.View())

	return strings.Join(parts, "\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)
	v.bar.SetWidth(width)
	v.resize()
}

func (v *View) resize() {
	rows := v.height - chromeRows
	if v.showSources {
		rows -= len(v.sources) + 1
	}
	v.transcript.Width = v.width
	v.transcript.Height = max(rows, 3)
	v.refresh()
}

// History returns a copy of the conversation so far.
func (v *View) History() []domain.Turn {
	return slices.Clone(v.history)
}

// Sources returns the sources of the last reply.
func (v *View) Sources() []domain.SourcePreview {
	return v.sources
}

// Pending reports whether a reply is outstanding.
func (v *View) Pending() bool {
	return v.pending
}

// Session returns the session under discussion.
func (v *View) Session() domain.Session {
	return v.session
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// InputValue returns the text currently typed.
func (v *View) InputValue() string {
	return v.input.Value()
}

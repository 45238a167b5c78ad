package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/papermentor/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/papermentor/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/papermentor/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/papermentor/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/papermentor/internal/adapters/driving/tui/views/sessions"
	"github.com/custodia-labs/papermentor/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	keymap *keymap.KeyMap

	// sessionsView is the paper picker.
	sessionsView *sessions.View

	// chatView is the mentor conversation.
	chatView *chat.View

	// initial is opened straight into chat when set.
	initial *domain.Session

	// currentView tracks which view is active.
	currentView messages.ViewType

	// previousView is where help returns to.
	previousView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       keymap.DefaultKeyMap(),
		sessionsView: sessions.NewView(s, ports.Sessions),
		chatView:     chat.NewView(s, ports.Chat),
		currentView:  messages.ViewSessions,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.sessionsView.SetContext(ctx)
	a.chatView.SetContext(ctx)
	return a
}

// WithSession opens the app directly in a chat about the given paper.
func (a *App) WithSession(session domain.Session) *App {
	a.initial = &session
	a.currentView = messages.ViewChat
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.SetWindowTitle("papermentor"),
		a.sessionsView.Init(),
	}
	if a.initial != nil {
		cmds = append(cmds, a.chatView.SetSession(*a.initial))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if keymap.Matches(msg.String(), a.keymap.Quit) {
			return a, tea.Quit
		}
		return a, a.updateActive(msg)

	case messages.SessionsLoaded:
		a.err = msg.Err
		a.sessionsView, cmd = a.sessionsView.Update(msg)
		return a, cmd

	case messages.SessionSelected:
		a.currentView = messages.ViewChat
		return a, a.chatView.SetSession(msg.Session)

	case messages.ReplyReceived:
		a.err = msg.Err
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.updateActive(msg)
}

func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	if view == messages.ViewHelp && a.currentView != messages.ViewHelp {
		a.previousView = a.currentView
	}
	a.currentView = view

	if view == messages.ViewSessions {
		// The catalogue may have grown while chatting.
		return a.sessionsView.Init()
	}
	return nil
}

func (a *App) updateActive(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	switch a.currentView {
	case messages.ViewSessions:
		a.sessionsView, cmd = a.sessionsView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewHelp:
		if key, ok := msg.(tea.KeyMsg); ok &&
			(keymap.Matches(key.String(), a.keymap.Back) || keymap.Matches(key.String(), a.keymap.Help)) {
			a.currentView = a.previousView
		}
	}

	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.sessionsView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")

	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "  %-10s %s\n", h.Key, h.Desc)
		}
		b.WriteString("\n")
	}

	b.WriteString(a.styles.Muted.Render(
		"The mentor answers from the paper and usually ends with a question.\n" +
			"Press enter on an empty line to let it lead the next step."))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Help.Render("[esc] back"))

	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Chat returns the chat view.
func (a *App) Chat() *chat.View {
	return a.chatView
}

// Sessions returns the sessions view.
func (a *App) Sessions() *sessions.View {
	return a.sessionsView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and its views.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.sessionsView.SetDimensions(width, height)
	a.chatView.SetDimensions(width, height)
}

// Package sessions provides the paper picker view for the TUI.
package sessions

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/papermentor/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/papermentor/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/papermentor/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/papermentor/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/papermentor/internal/core/ports/driving"
)

// View lists ingested papers and opens a chat for the chosen one.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	service driving.SessionService
	ctx     context.Context
	list    *list.SessionList
	err     error
	loading bool
	width   int
	height  int
	ready   bool
}

// NewView creates a new sessions view.
func NewView(s *styles.Styles, service driving.SessionService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles:  s,
		keymap:  keymap.DefaultKeyMap(),
		service: service,
		ctx:     context.Background(),
		list:    list.NewSessionList(s),
		width:   80,
		height:  24,
	}
}

// SetContext sets the context used for service calls.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// Init loads the session catalogue.
func (v *View) Init() tea.Cmd {
	v.loading = true
	v.err = nil
	return v.load()
}

func (v *View) load() tea.Cmd {
	service, ctx := v.service, v.ctx
	return func() tea.Msg {
		if service == nil {
			return messages.SessionsLoaded{}
		}
		sessions, err := service.List(ctx)
		return messages.SessionsLoaded{Sessions: sessions, Err: err}
	}
}

// Update handles messages for the sessions view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SessionsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.list.SetSessions(msg.Sessions)
		}
		return v, nil

	case tea.KeyMsg:
		switch {
		case keymap.Matches(msg.String(), v.keymap.Select):
			session := v.list.SelectedSession()
			if session == nil {
				return v, nil
			}
			selected := *session
			return v, func() tea.Msg {
				return messages.SessionSelected{Session: selected}
			}

		case keymap.Matches(msg.String(), v.keymap.Reload):
			return v, v.Init()

		case keymap.Matches(msg.String(), v.keymap.Help):
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewHelp}
			}

		case msg.String() == "q":
			return v, tea.Quit
		}

		var cmd tea.Cmd
		v.list, cmd = v.list.Update(msg)
		return v, cmd
	}

	return v, nil
}

// View renders the session picker.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render("PaperMentor"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("Pick a paper to discuss with your Socratic mentor"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading papers..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Could not load papers: " + v.err.Error()))
	default:
		b.WriteString(v.list.View())
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Open  [r] Reload  [?] Help  [q] Quit"))

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	// Title, subtitle and footer take six rows.
	v.list.SetDimensions(width, max(height-6, 2))
}

// List exposes the underlying session list.
func (v *View) List() *list.SessionList {
	return v.list
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}

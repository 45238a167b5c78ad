package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papermentor/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/papermentor/internal/core/domain"
)

func newTestPorts() *Ports {
	return NewPorts(&MockChatService{}, &MockSessionService{})
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(newTestPorts())

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewSessions, app.CurrentView())
	assert.False(t, app.Ready())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{Sessions: &MockSessionService{}})

	assert.ErrorIs(t, err, ErrMissingChatService)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Equal(t, app, app.WithContext(ctx))
}

func TestApp_Init(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	assert.NotNil(t, app.Init())
}

func TestApp_WithSession_OpensChat(t *testing.T) {
	app, _ := NewApp(newTestPorts())
	app.WithSession(domain.Session{ID: "s1", Filename: "attention.pdf"})

	assert.Equal(t, messages.ViewChat, app.CurrentView())
	assert.NotNil(t, app.Init())
	assert.Equal(t, "s1", app.Chat().Session().ID)
	assert.True(t, app.Chat().Pending())
}

func TestApp_Update_WindowSize(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
}

func TestApp_View_NotReady(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_Update_SessionsLoaded(t *testing.T) {
	app := newTestApp(t)

	app.Update(messages.SessionsLoaded{Sessions: []domain.Session{{ID: "a", Filename: "a.pdf"}}})

	assert.Equal(t, 1, app.Sessions().List().Count())
	assert.Contains(t, app.View(), "a.pdf")
}

func TestApp_Update_SessionsLoaded_WithError(t *testing.T) {
	app := newTestApp(t)

	app.Update(messages.SessionsLoaded{Err: errors.New("db locked")})

	assert.Error(t, app.Err())
	assert.Contains(t, app.View(), "db locked")
}

func TestApp_Update_SessionSelected_StartsLead(t *testing.T) {
	var got domain.ChatRequest
	ports := NewPorts(&MockChatService{
		RespondFunc: func(_ context.Context, req domain.ChatRequest) (*domain.ChatReply, error) {
			got = req
			return &domain.ChatReply{Reply: "Shall we start with the abstract?"}, nil
		},
	}, &MockSessionService{})
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(100, 30)

	_, cmd := app.Update(messages.SessionSelected{Session: domain.Session{ID: "s1", Filename: "a.pdf"}})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChat, app.CurrentView())

	reply, ok := cmd().(messages.ReplyReceived)
	require.True(t, ok)
	assert.True(t, got.Lead)
	assert.Empty(t, got.UserMessage)
	assert.Equal(t, "s1", reply.SessionID)

	app.Update(reply)
	assert.False(t, app.Chat().Pending())
	require.Len(t, app.Chat().History(), 1)
	assert.Equal(t, domain.RoleAssistant, app.Chat().History()[0].Role)
	assert.Contains(t, app.View(), "Shall we start with the abstract?")
}

func TestApp_Update_ReplyReceived_WithError(t *testing.T) {
	app := newTestApp(t)
	app.Update(messages.SessionSelected{Session: domain.Session{ID: "s1"}})

	app.Update(messages.ReplyReceived{SessionID: "s1", Err: domain.ErrGenerationProvider})

	assert.ErrorIs(t, app.Err(), domain.ErrGenerationProvider)
	assert.ErrorIs(t, app.Chat().Err(), domain.ErrGenerationProvider)
}

func TestApp_Update_ViewChanged_ToSessionsReloads(t *testing.T) {
	app := newTestApp(t)
	app.Update(messages.SessionSelected{Session: domain.Session{ID: "s1"}})

	_, cmd := app.Update(messages.ViewChanged{View: messages.ViewSessions})

	assert.Equal(t, messages.ViewSessions, app.CurrentView())
	require.NotNil(t, cmd)
	assert.IsType(t, messages.SessionsLoaded{}, cmd())
}

func TestApp_HelpReturnsToPreviousView(t *testing.T) {
	app := newTestApp(t)
	app.Update(messages.SessionSelected{Session: domain.Session{ID: "s1"}})

	app.Update(messages.ViewChanged{View: messages.ViewHelp})
	assert.Equal(t, messages.ViewHelp, app.CurrentView())
	assert.Contains(t, app.View(), "Help")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewChat, app.CurrentView())
}

func TestApp_Update_KeyMsg_CtrlC(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_Update_Quit(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_Update_ErrorOccurred(t *testing.T) {
	app := newTestApp(t)

	app.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, app.Err(), "boom")
}

func TestApp_SetDimensions(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	app.SetDimensions(120, 40)

	assert.True(t, app.Ready())
	assert.Equal(t, 120, app.width)
	assert.Equal(t, 40, app.height)
}

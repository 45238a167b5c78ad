package chat

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

type stubChat struct {
	requests []domain.ChatRequest
	reply    *domain.ChatReply
	err      error
}

func (s *stubChat) Respond(_ context.Context, req domain.ChatRequest) (*domain.ChatReply, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.reply, nil
}

func typeText(v *View, text string) {
	for _, r := range text {
		v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func openSession(t *testing.T, chat *stubChat) *View {
	t.Helper()
	v := NewView(nil, chat)
	v.SetDimensions(100, 30)

	cmd := v.SetSession(domain.Session{ID: "s1", Filename: "attention.pdf", Summary: "A paper about attention."})
	require.NotNil(t, cmd)
	v.Update(cmd())
	return v
}

func TestSetSession_SendsLeadTurn(t *testing.T) {
	chat := &stubChat{reply: &domain.ChatReply{Reply: "What problem does the paper tackle?"}}
	v := NewView(nil, chat)

	cmd := v.SetSession(domain.Session{ID: "s1", Filename: "attention.pdf"})
	assert.True(t, v.Pending())
	assert.Contains(t, v.View(), "Mentor is thinking...")

	v.Update(cmd())

	require.Len(t, chat.requests, 1)
	assert.True(t, chat.requests[0].Lead)
	assert.Empty(t, chat.requests[0].UserMessage)
	assert.Empty(t, chat.requests[0].History)

	assert.False(t, v.Pending())
	assert.Equal(t, []domain.Turn{
		{Role: domain.RoleAssistant, Content: "What problem does the paper tackle?"},
	}, v.History())
}

func TestSend_CarriesPriorHistoryWithoutNewMessage(t *testing.T) {
	chat := &stubChat{reply: &domain.ChatReply{Reply: "Opening question?"}}
	v := openSession(t, chat)

	chat.reply = &domain.ChatReply{
		Reply:   "Good. Which section supports that?",
		Sources: []domain.SourcePreview{{Page: 3, Excerpt: "We propose"}},
	}
	typeText(v, "It is about attention")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Empty(t, v.InputValue())
	assert.Contains(t, v.View(), "It is about attention")

	v.Update(cmd())

	require.Len(t, chat.requests, 2)
	req := chat.requests[1]
	assert.Equal(t, "It is about attention", req.UserMessage)
	assert.False(t, req.Lead)
	assert.Equal(t, []domain.Turn{{Role: domain.RoleAssistant, Content: "Opening question?"}}, req.History)

	history := v.History()
	require.Len(t, history, 3)
	assert.Equal(t, domain.Turn{Role: domain.RoleUser, Content: "It is about attention"}, history[1])
	assert.Equal(t, domain.RoleAssistant, history[2].Role)
	assert.Len(t, v.Sources(), 1)
}

func TestSend_EmptyMessageLetsMentorLead(t *testing.T) {
	chat := &stubChat{reply: &domain.ChatReply{Reply: "Next step?"}}
	v := openSession(t, chat)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	v.Update(cmd())

	require.Len(t, chat.requests, 2)
	assert.True(t, chat.requests[1].Lead)
	// Lead turns add only the mentor's reply.
	assert.Len(t, v.History(), 2)
}

func TestSend_IgnoredWhilePending(t *testing.T) {
	chat := &stubChat{reply: &domain.ChatReply{Reply: "Hi"}}
	v := NewView(nil, chat)
	v.SetSession(domain.Session{ID: "s1"})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
}

func TestReceive_ErrorRestoresInput(t *testing.T) {
	chat := &stubChat{reply: &domain.ChatReply{Reply: "Opening question?"}}
	v := openSession(t, chat)

	chat.err = domain.ErrGenerationProvider
	typeText(v, "why")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v.Update(cmd())

	assert.ErrorIs(t, v.Err(), domain.ErrGenerationProvider)
	assert.Equal(t, "why", v.InputValue())
	assert.Len(t, v.History(), 1)
	assert.False(t, v.Pending())
}

func TestReceive_IgnoresOtherSessions(t *testing.T) {
	chat := &stubChat{reply: &domain.ChatReply{Reply: "Opening question?"}}
	v := openSession(t, chat)

	v.Update(messages.ReplyReceived{SessionID: "other", Err: errors.New("stale")})

	assert.NoError(t, v.Err())
	assert.Len(t, v.History(), 1)
}

func TestToggleSources(t *testing.T) {
	chat := &stubChat{reply: &domain.ChatReply{
		Reply:   "Look at the method.",
		Sources: []domain.SourcePreview{{Page: 4, Excerpt: "multi-head attention"}},
	}}
	v := openSession(t, chat)

	assert.NotContains(t, v.View(), "Source 1 (p.4)")
	v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Contains(t, v.View(), "Source 1 (p.4)")
	assert.Contains(t, v.View(), "multi-head attention")
	v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.NotContains(t, v.View(), "Source 1 (p.4)")
}

func TestView_ShowsSummaryAndLabels(t *testing.T) {
	chat := &stubChat{reply: &domain.ChatReply{Reply: "Opening question?"}}
	v := openSession(t, chat)

	out := v.View()

	assert.Contains(t, out, "A paper about attention.")
	assert.Contains(t, out, "Mentor")
	assert.Contains(t, out, "attention.pdf")
}

func TestEscReturnsToSessions(t *testing.T) {
	v := NewView(nil, &stubChat{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewSessions}, cmd())
}

func TestSetDimensions(t *testing.T) {
	v := NewView(nil, &stubChat{})

	v.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 120, v.width)
	assert.Equal(t, 40-chromeRows, v.transcript.Height)
}

package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
)

func TestSplitSystem(t *testing.T) {
	system, msgs := splitSystem([]driven.ChatMessage{
		{Role: domain.RoleSystem, Content: "persona"},
		{Role: domain.RoleSystem, Content: "context"},
		{Role: domain.RoleAssistant, Content: "Welcome! What drew you to this paper?"},
		{Role: domain.RoleUser, Content: "the results"},
	})

	assert.Equal(t, "persona\n\ncontext", system)
	require.Len(t, msgs, 3)
	assert.Equal(t, messagesMessage{Role: "user", Content: openingTurn}, msgs[0])
	assert.Equal(t, "assistant", msgs[1].Role)
	assert.Equal(t, "user", msgs[2].Role)
}

func TestSplitSystem_UserFirstUnchanged(t *testing.T) {
	_, msgs := splitSystem([]driven.ChatMessage{{Role: domain.RoleUser, Content: "hi"}})
	assert.Equal(t, []messagesMessage{{Role: "user", Content: "hi"}}, msgs)
}

func TestChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultMaxTokens, req.MaxTokens)
		assert.Equal(t, "persona", req.System)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Good "},{"type":"text","text":"question."}]}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "sk-ant", BaseURL: server.URL})
	require.NoError(t, err)

	reply, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: domain.RoleSystem, Content: "persona"},
		{Role: domain.RoleUser, Content: "why?"},
	}, driven.ChatOptions{Temperature: 0.4})
	require.NoError(t, err)
	assert.Equal(t, "Good question.", reply)
}

func TestChat_Overloaded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(529)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "sk-ant", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Chat(context.Background(), nil, driven.ChatOptions{})
	var perr *domain.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, domain.ProviderErrorServer, perr.Category)
	assert.Equal(t, "Overloaded", perr.Message)
}

func TestNewLLMService_RequiresKey(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.Error(t, err)
}

package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papermentor/internal/adapters/driven/config/env"
	"github.com/custodia-labs/papermentor/internal/adapters/driven/config/file"
	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/services"
)

// clearEnv hides variables from the developer's shell that would override config.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, names := range env.Variables {
		for _, name := range names {
			t.Setenv(name, "")
		}
	}
	for _, name := range []string{"OPENAI_API_KEY", "OPENAI_BASE_URL", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "OLLAMA_HOST"} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, dir string, values map[string]any) {
	t.Helper()
	store, err := file.NewConfigStore(dir)
	require.NoError(t, err)
	for k, v := range values {
		require.NoError(t, store.Set(k, v))
	}
	require.NoError(t, store.Save())
}

func TestNew_Ephemeral(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	a, err := New(context.Background(), Options{ConfigDir: dir, Ephemeral: true})
	require.NoError(t, err)
	defer func() { assert.NoError(t, a.Close()) }()

	assert.NotNil(t, a.Ingest)
	assert.NotNil(t, a.Chat)
	assert.NotNil(t, a.Retrieval)
	assert.NotNil(t, a.Sessions)
	assert.NotNil(t, a.Config)
	assert.Equal(t, domain.AIProviderOpenAI, a.Settings.LLM.Provider)

	sessions, err := a.Sessions.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestNew_PersistentStores(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	data := t.TempDir()
	writeConfig(t, dir, map[string]any{
		services.KeyDBDirectory:     filepath.Join(data, "db"),
		services.KeyUploadDirectory: filepath.Join(data, "uploads"),
	})

	a, err := New(context.Background(), Options{ConfigDir: dir})
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, filepath.Join(data, "db"), a.Settings.Pipeline.DBDirectory)
	assert.DirExists(t, filepath.Join(data, "uploads"))
}

func TestNew_InvalidPipelineConfig(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, map[string]any{
		services.KeyChunkSize:    100,
		services.KeyChunkOverlap: 100,
	})

	_, err := New(context.Background(), Options{ConfigDir: dir, Ephemeral: true})

	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestNew_EnvironmentOverridesConfig(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, map[string]any{services.KeyLLMModel: "gpt-4o"})
	t.Setenv("CHAT_MODEL", "gpt-4.1-mini")

	a, err := New(context.Background(), Options{ConfigDir: dir, Ephemeral: true})
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "gpt-4.1-mini", a.Settings.LLM.Model)
	assert.Equal(t, "gpt-4.1-mini", a.Settings.Pipeline.GenerationModel)
}

func TestNew_NegativeMaxChunksFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_EMBED_CHUNKS", "-1")

	a, err := New(context.Background(), Options{ConfigDir: t.TempDir(), Ephemeral: true})
	require.NoError(t, err)
	defer a.Close()

	assert.Zero(t, a.Settings.Pipeline.MaxChunksPerUpload)
}

func TestApp_WarningsForMissingKeys(t *testing.T) {
	clearEnv(t)

	a, err := New(context.Background(), Options{ConfigDir: t.TempDir(), Ephemeral: true})
	require.NoError(t, err)
	defer a.Close()

	warnings := a.Warnings()
	assert.Contains(t, warnings, "embedding provider openai is not configured")
	assert.Contains(t, warnings, "llm provider openai is not configured")
}

func TestApp_IngestWithoutProviderFails(t *testing.T) {
	clearEnv(t)

	a, err := New(context.Background(), Options{ConfigDir: t.TempDir(), Ephemeral: true})
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Ingest.Ingest(context.Background(), domain.IngestRequest{Filename: "notes.txt", Content: []byte("x")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = a.Retrieval.Retrieve(context.Background(), "abc", "attention", 3)
	assert.Error(t, err)
}

func TestResolveConfigDir(t *testing.T) {
	dir, err := resolveConfigDir("/etc/pm")
	require.NoError(t, err)
	assert.Equal(t, "/etc/pm", dir)

	t.Setenv("HOME", "/home/student")
	dir, err = resolveConfigDir("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/student", ".papermentor"), dir)
}

// Every environment variable must land on a key the settings service reads.
func TestEnvironmentKeysMatchSettingsKeys(t *testing.T) {
	known := map[string]bool{
		services.KeyEmbedProvider:      true,
		services.KeyEmbedModel:         true,
		services.KeyEmbedBaseURL:       true,
		services.KeyEmbedAPIKey:        true,
		services.KeyLLMProvider:        true,
		services.KeyLLMModel:           true,
		services.KeyLLMBaseURL:         true,
		services.KeyLLMAPIKey:          true,
		services.KeyDBDirectory:        true,
		services.KeyUploadDirectory:    true,
		services.KeyMaxChunks:          true,
		services.KeyBatchSize:          true,
		services.KeyChunkSize:          true,
		services.KeyChunkOverlap:       true,
		services.KeyTopK:               true,
		services.KeyPreviewChars:       true,
		services.KeySummaryChars:       true,
		services.KeyChatTemperature:    true,
		services.KeySummaryTemperature: true,
		services.KeyStorageBackend:     true,
		services.KeyChromaURL:          true,
		services.KeyPostgresDSN:        true,
		services.KeyRateLimitRPS:       true,
		services.KeyRateLimitBurst:     true,
	}

	for key := range env.Variables {
		assert.True(t, known[key], "environment key %s is not read by settings", key)
	}
}

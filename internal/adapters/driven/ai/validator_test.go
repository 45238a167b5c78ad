package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
)

func TestNewConfigValidator(t *testing.T) {
	validator := NewConfigValidator()

	require.NotNil(t, validator)
}

func TestConfigValidator_ImplementsInterface(t *testing.T) {
	var _ driven.AIConfigValidator = (*ConfigValidator)(nil)
}

func TestConfigValidator_ValidateEmbedding_NilConfig(t *testing.T) {
	assert.NoError(t, NewConfigValidator().ValidateEmbedding(nil))
}

func TestConfigValidator_ValidateEmbedding_MissingKey(t *testing.T) {
	config := &domain.EmbeddingSettings{
		Provider: domain.AIProviderOpenAI,
		Model:    "text-embedding-3-small",
	}

	// Nothing to ping until a key is set.
	assert.NoError(t, NewConfigValidator().ValidateEmbedding(config))
}

func TestConfigValidator_ValidateEmbedding_Anthropic(t *testing.T) {
	config := &domain.EmbeddingSettings{
		Provider: domain.AIProviderAnthropic,
		APIKey:   "key",
	}

	err := NewConfigValidator().ValidateEmbedding(config)

	assert.Error(t, err)
}

func TestConfigValidator_ValidateLLM_NilConfig(t *testing.T) {
	assert.NoError(t, NewConfigValidator().ValidateLLM(nil))
}

func TestConfigValidator_ValidateLLM_Unreachable(t *testing.T) {
	config := &domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  "http://127.0.0.1:1",
		Model:    "llama3.2",
	}

	err := NewConfigValidator().ValidateLLM(config)

	assert.Error(t, err)
}

package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Distinct(t *testing.T) {
	all := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrInvalidConfig,
		ErrStorage,
		ErrLLMUnavailable,
		ErrEmbeddingUnavailable,
		ErrDecryption,
		ErrUnreadablePDF,
		ErrNoExtractableText,
		ErrEmbeddingProvider,
		ErrSummaryGeneration,
		ErrGenerationProvider,
	}

	for i, a := range all {
		assert.NotEmpty(t, a.Error())
		for j, b := range all {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
}

func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("extracting pages: %w", ErrDecryption)

	assert.ErrorIs(t, wrapped, ErrDecryption)
	assert.NotErrorIs(t, wrapped, ErrUnreadablePDF)
}

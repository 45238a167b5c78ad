package cli

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/papermentor/internal/core/domain"
)

func errNotConfigured(name string) error {
	return fmt.Errorf("%s service not configured", name)
}

// withHint appends a next step to errors the user can fix themselves.
func withHint(err error) error {
	if err == nil {
		return nil
	}

	var hint string
	switch {
	case errors.Is(err, domain.ErrEmbeddingUnavailable), errors.Is(err, domain.ErrLLMUnavailable):
		hint = "Run 'papermentor settings' to configure AI providers."
	case errors.Is(err, domain.ErrNotFound):
		hint = "Run 'papermentor sessions list' to see available sessions."
	case errors.Is(err, domain.ErrNoExtractableText):
		hint = "The PDF may be a scan without a text layer."
	case errors.Is(err, domain.ErrExtractorUnavailable):
		hint = "Install poppler-utils (pdfinfo and pdftotext) and try again."
	case errors.Is(err, domain.ErrDecryption):
		hint = "Remove the password protection and try again."
	default:
		return err
	}
	return fmt.Errorf("%w\n%s", err, hint)
}

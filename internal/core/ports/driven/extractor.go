package driven

import "context"

// PageExtractor reads the per-page text of a stored document.
type PageExtractor interface {
	// ExtractPages returns the text of every page in order.
	// Encrypted documents that need a password fail with domain.ErrDecryption,
	// unparseable ones with domain.ErrUnreadablePDF. A single page that
	// cannot be read comes back as an empty string.
	ExtractPages(ctx context.Context, path string) ([]string, error)
}

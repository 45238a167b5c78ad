package domain

import (
	"fmt"
	"strings"
	"time"
)

// collectionPrefix namespaces every session's vector collection.
const collectionPrefix = "paper_"

// Session is one uploaded paper and the namespace owning its chunks.
// It is created once indexing succeeds and never mutated afterwards;
// uploading the same file again produces a new session.
type Session struct {
	// ID is the 32 character hex session identifier.
	ID string `json:"session_id"`

	// Filename is the name the paper was uploaded under.
	Filename string `json:"filename"`

	// DocumentPath is the locator returned when the raw bytes were persisted.
	DocumentPath string `json:"document_path"`

	// PageCount is the number of pages extracted, empty pages included.
	PageCount int `json:"page_count"`

	// ChunkCount is the number of chunks actually indexed.
	ChunkCount int `json:"chunk_count"`

	// Summary is the accessible summary, or its failure placeholder.
	Summary string `json:"summary"`

	// CreatedAt is when the session was recorded.
	CreatedAt time.Time `json:"created_at"`
}

// CollectionName returns the vector collection that belongs to a session.
func CollectionName(sessionID string) string {
	return collectionPrefix + sessionID
}

// SessionFromCollection reverses CollectionName.
// Returns false if the name is not a session collection.
func SessionFromCollection(name string) (string, bool) {
	if !strings.HasPrefix(name, collectionPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(name, collectionPrefix)
	return id, id != ""
}

// Paper is an extracted document on its way through the ingestion pipeline.
type Paper struct {
	// SessionID is the session the paper is being ingested under.
	SessionID string

	// Filename is the original upload name.
	Filename string

	// Path is where the raw PDF was persisted.
	Path string

	// Pages holds the text of each page in order. Page N is Pages[N-1].
	// A page with no extractable text is an empty string.
	Pages []string
}

// PageCount returns the number of pages, empty ones included.
func (p *Paper) PageCount() int {
	return len(p.Pages)
}

// FullText joins all pages with blank lines between them.
func (p *Paper) FullText() string {
	return strings.Join(p.Pages, "\n\n")
}

// ChunkMetadata is the closed set of attributes stored with every chunk.
type ChunkMetadata struct {
	// SessionID is the owning session.
	SessionID string `json:"session_id"`

	// Page is the 1-based page number.
	Page int `json:"page"`

	// ChunkIndex is the 0-based position of the chunk within its page.
	ChunkIndex int `json:"chunk"`
}

// Chunk is the atomic retrieval unit: a window of one page's text.
type Chunk struct {
	// ID is the storage key derived from session, page and chunk index.
	ID string

	// Text is the raw window of page text.
	Text string

	// Metadata locates the chunk within its session.
	Metadata ChunkMetadata
}

// ChunkID derives the deterministic storage key of a chunk.
func ChunkID(sessionID string, page, chunkIndex int) string {
	return fmt.Sprintf("%s_p%d_c%d", sessionID, page, chunkIndex)
}

// IngestRequest is a raw upload.
type IngestRequest struct {
	// Filename is the name the client uploaded the file under.
	Filename string

	// Content is the raw PDF bytes.
	Content []byte
}

// IngestResult reports a completed ingestion.
type IngestResult struct {
	SessionID  string `json:"session_id"`
	Summary    string `json:"summary"`
	PageCount  int    `json:"page_count"`
	ChunkCount int    `json:"chunk_count"`

	// SummaryErr is set when the summary fell back to its placeholder.
	SummaryErr error `json:"-"`
}

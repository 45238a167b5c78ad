// Package watcher ingests PDFs dropped into an inbox directory.
// It is a driving adapter: filesystem events drive the ingest service.
package watcher

import "errors"

// ErrMissingIngestService is returned when no ingest service is provided.
var ErrMissingIngestService = errors.New("watcher: ingest service is required")

// ErrNotDirectory is returned when the inbox path is not a directory.
var ErrNotDirectory = errors.New("watcher: inbox is not a directory")

// ErrClosed is returned when Run is called on a closed watcher.
var ErrClosed = errors.New("watcher: closed")

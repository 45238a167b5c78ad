package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/ports/driving"
	"github.com/custodia-labs/papermentor/internal/logger"
)

// DefaultSettleDelay is how long a file must stay quiet before it is ingested.
// Copies arrive as a burst of writes and the PDF is only whole after the last.
const DefaultSettleDelay = 750 * time.Millisecond

// Result reports one ingestion attempt.
type Result struct {
	Path   string
	Result *domain.IngestResult
	Err    error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettleDelay overrides DefaultSettleDelay.
func WithSettleDelay(d time.Duration) Option {
	return func(w *Watcher) {
		w.settle = d
	}
}

// WithExisting ingests PDFs already in the inbox when Run starts.
func WithExisting(enabled bool) Option {
	return func(w *Watcher) {
		w.existing = enabled
	}
}

// WithResultHandler registers a callback for every ingestion attempt.
// The callback runs on the worker goroutine.
func WithResultHandler(fn func(Result)) Option {
	return func(w *Watcher) {
		w.onResult = fn
	}
}

// Watcher ingests each new PDF in a directory exactly once.
type Watcher struct {
	dir      string
	ingest   driving.IngestService
	settle   time.Duration
	existing bool
	onResult func(Result)

	mu       sync.Mutex
	seen     map[string]struct{}
	pending  map[string]*time.Timer
	closed   bool
	inflight sync.WaitGroup
}

// New creates a watcher for dir.
func New(dir string, ingest driving.IngestService, opts ...Option) (*Watcher, error) {
	if ingest == nil {
		return nil, ErrMissingIngestService
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving inbox: %w", err)
	}

	w := &Watcher{
		dir:     abs,
		ingest:  ingest,
		settle:  DefaultSettleDelay,
		seen:    make(map[string]struct{}),
		pending: make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Dir returns the absolute inbox path.
func (w *Watcher) Dir() string {
	return w.dir
}

// Run watches the inbox until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return ErrClosed
	}

	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("inbox error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, w.dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	ready := make(chan string, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.work(ctx, ready)
	}()

	if err := w.scan(ready); err != nil {
		logger.Warn("scanning inbox: %v", err)
	}

	logger.Info("Watching %s for new PDFs", w.dir)

	for {
		select {
		case <-ctx.Done():
			w.shutdown(ready, done)
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				w.shutdown(ready, done)
				return nil
			}
			w.handleEvent(event, ready)

		case err, ok := <-fsw.Errors:
			if !ok {
				continue
			}
			logger.Warn("watcher: %v", err)
		}
	}
}

// scan records or queues the PDFs already present.
func (w *Watcher) scan(ready chan<- string) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if !isPDF(path) {
			continue
		}
		if w.existing {
			w.schedule(path, ready)
			continue
		}
		w.markSeen(path)
	}
	return nil
}

// handleEvent debounces create and write events per path.
func (w *Watcher) handleEvent(event fsnotify.Event, ready chan<- string) {
	if !isPDF(event.Name) {
		return
	}

	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		logger.Debug("watcher: %s", event)
		w.schedule(event.Name, ready)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.cancel(event.Name)
	}
}

func (w *Watcher) schedule(path string, ready chan<- string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.seen[path]; ok {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		_, still := w.pending[path]
		delete(w.pending, path)
		send := still && !w.closed
		if send {
			w.inflight.Add(1)
		}
		w.mu.Unlock()
		if send {
			ready <- path
			w.inflight.Done()
		}
	})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

// shutdown stops the timers and waits for the worker to drain.
func (w *Watcher) shutdown(ready chan string, done <-chan struct{}) {
	w.stopTimers()
	w.inflight.Wait()
	close(ready)
	<-done
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

// work ingests settled paths one at a time.
func (w *Watcher) work(ctx context.Context, ready <-chan string) {
	for path := range ready {
		if ctx.Err() != nil {
			continue
		}
		if !w.claim(path) {
			continue
		}

		res, err := w.ingestFile(ctx, path)
		if err != nil && retryable(err) {
			w.forget(path)
		}
		if err != nil {
			logger.Warn("ingesting %s: %v", filepath.Base(path), err)
		} else {
			logger.Info("Ingested %s as session %s", filepath.Base(path), res.SessionID)
		}
		if w.onResult != nil {
			w.onResult(Result{Path: path, Result: res, Err: err})
		}
	}
}

func (w *Watcher) ingestFile(ctx context.Context, path string) (*domain.IngestResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return w.ingest.Ingest(ctx, domain.IngestRequest{
		Filename: filepath.Base(path),
		Content:  content,
	})
}

// claim marks path as seen and reports whether this call did so.
func (w *Watcher) claim(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.seen[path]; ok {
		return false
	}
	w.seen[path] = struct{}{}
	return true
}

func (w *Watcher) markSeen(path string) {
	w.mu.Lock()
	w.seen[path] = struct{}{}
	w.mu.Unlock()
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	delete(w.seen, path)
	w.mu.Unlock()
}

// Seen reports whether path has been claimed for ingestion.
func (w *Watcher) Seen(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.seen[path]
	return ok
}

// Close stops future runs. A running Run returns when its context ends.
func (w *Watcher) Close() error {
	w.stopTimers()
	return nil
}

// retryable reports whether a later write to the same file should try again.
// Bad documents are never retried; provider and storage failures are.
func retryable(err error) bool {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrDecryption),
		errors.Is(err, domain.ErrUnreadablePDF),
		errors.Is(err, domain.ErrNoExtractableText):
		return false
	case errors.Is(err, context.Canceled):
		return false
	}
	return true
}

func isPDF(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".pdf")
}

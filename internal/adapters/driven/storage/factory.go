// Package storage opens the vector and session stores selected by settings.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/papermentor/internal/adapters/driven/storage/chroma"
	"github.com/custodia-labs/papermentor/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/papermentor/internal/adapters/driven/storage/pgvector"
	"github.com/custodia-labs/papermentor/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
	"github.com/custodia-labs/papermentor/internal/logger"
)

// Stores bundles the opened stores.
type Stores struct {
	Vectors  driven.VectorStore
	Sessions driven.SessionStore

	closers []func() error
}

// Close releases every store, returning the joined errors.
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// Open builds the stores for a backend.
// The session catalogue lives in SQLite under dbDir for every backend but
// memory, which keeps sessions in memory too.
func Open(ctx context.Context, backend domain.VectorBackend, dbDir string, storage domain.StorageSettings) (*Stores, error) {
	logger.Debug("Opening %s vector store", backend)

	if backend == domain.VectorBackendMemory {
		return &Stores{
			Vectors:  memory.NewVectorStore(),
			Sessions: memory.NewSessionStore(),
		}, nil
	}

	db, err := sqlite.NewStore(dbDir)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite store: %w", domain.ErrStorage, err)
	}
	stores := &Stores{
		Sessions: db.SessionStore(),
		closers:  []func() error{db.Close},
	}

	switch backend {
	case domain.VectorBackendSQLite:
		stores.Vectors = db.VectorStore()
		return stores, nil

	case domain.VectorBackendChroma:
		vs, err := chroma.New(storage.ChromaURL)
		if err != nil {
			_ = stores.Close()
			return nil, fmt.Errorf("%w: connect chroma: %w", domain.ErrStorage, err)
		}
		stores.Vectors = vs
		stores.closers = append(stores.closers, vs.Close)
		return stores, nil

	case domain.VectorBackendPGVector:
		vs, err := pgvector.New(ctx, storage.PostgresDSN)
		if err != nil {
			_ = stores.Close()
			return nil, fmt.Errorf("%w: connect pgvector: %w", domain.ErrStorage, err)
		}
		stores.Vectors = vs
		stores.closers = append(stores.closers, vs.Close)
		return stores, nil

	default:
		_ = stores.Close()
		return nil, fmt.Errorf("%w: unknown vector backend %q", domain.ErrInvalidConfig, backend)
	}
}

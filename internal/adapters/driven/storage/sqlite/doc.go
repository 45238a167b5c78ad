// Package sqlite provides a unified SQLite-based implementation of the
// vector and session stores.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Both stores share one database file:
//
//   - VectorStore: per-session collections of embedded chunks
//   - SessionStore: the record of every ingested paper
//
// Embeddings are stored as little-endian float32 BLOBs. Queries load one
// collection and rank it exactly by squared euclidean distance, which is
// fast enough for the few hundred chunks a single paper produces.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.papermentor/data/papermentor.db
package sqlite

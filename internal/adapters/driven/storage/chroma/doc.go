// Package chroma implements driven.VectorStore on a remote Chroma server.
//
// Every session lives in its own Chroma collection. Embeddings are always
// supplied by the caller, so the server never embeds text itself, and the
// collection's default l2 space yields squared euclidean distances.
package chroma

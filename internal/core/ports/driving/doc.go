// Package driving defines interfaces that external actors (UI, CLI) use
// to interact with core services: ingesting papers, retrieving
// passages and chatting with the mentor. These are the "driving" ports in hexagonal
// architecture terminology - they drive the application.
//
// Implementations of these interfaces live in internal/core/services.
package driving

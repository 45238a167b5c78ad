// Package services implements the driving port interfaces.
// Services contain the core business logic of the paper mentor
// (ingestion, retrieval, dialogue, summaries) and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO.
package services

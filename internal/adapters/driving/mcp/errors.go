// Package mcp provides an MCP (Model Context Protocol) server adapter for PaperMentor.
// It lets AI assistants ingest papers, pull grounded passages and ask the mentor.
package mcp

import "errors"

var (
	// ErrMissingChatService is returned when the chat service is not provided.
	ErrMissingChatService = errors.New("mcp: chat service is required")

	// ErrMissingRetrievalService is returned when the retrieval service is not provided.
	ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
)

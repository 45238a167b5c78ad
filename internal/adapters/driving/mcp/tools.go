package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/papermentor/internal/core/domain"
)

// IngestInput is the input schema for the ingest_paper tool.
type IngestInput struct {
	Path string `json:"path" jsonschema:"absolute path of a local PDF to ingest"`
}

// IngestOutput is the output schema for the ingest_paper tool.
type IngestOutput struct {
	SessionID  string `json:"session_id"`
	Summary    string `json:"summary"`
	PageCount  int    `json:"page_count"`
	ChunkCount int    `json:"chunk_count"`
}

// TurnInput is one earlier message of the conversation.
type TurnInput struct {
	Role    string `json:"role" jsonschema:"user or assistant"`
	Content string `json:"content"`
}

// AskInput is the input schema for the ask_mentor tool.
type AskInput struct {
	SessionID string      `json:"session_id" jsonschema:"session returned by ingest_paper"`
	Message   string      `json:"message,omitempty" jsonschema:"the student's message; empty lets the mentor lead"`
	History   []TurnInput `json:"history,omitempty" jsonschema:"earlier turns, oldest first"`
	Lead      bool        `json:"lead,omitempty" jsonschema:"ask the mentor to open the discussion"`
}

// AskOutput is the output schema for the ask_mentor tool.
type AskOutput struct {
	Reply   string         `json:"reply"`
	Sources []SourceOutput `json:"sources"`
}

// SourceOutput attributes a reply to a page.
type SourceOutput struct {
	Page    int    `json:"page"`
	Excerpt string `json:"excerpt"`
}

// RetrieveInput is the input schema for the retrieve_passages tool.
type RetrieveInput struct {
	SessionID string `json:"session_id" jsonschema:"session returned by ingest_paper"`
	Query     string `json:"query" jsonschema:"what to look for in the paper"`
	K         int    `json:"k,omitempty" jsonschema:"maximum number of passages (default 4)"`
}

// RetrieveOutput is the output schema for the retrieve_passages tool.
type RetrieveOutput struct {
	Context  string          `json:"context"`
	Passages []PassageOutput `json:"passages"`
	Count    int             `json:"count"`
}

// PassageOutput is one retrieved chunk.
type PassageOutput struct {
	Page     int     `json:"page"`
	Chunk    int     `json:"chunk"`
	Distance float64 `json:"distance"`
	Text     string  `json:"text"`
}

// ListSessionsInput is the (empty) input schema for the list_sessions tool.
type ListSessionsInput struct{}

// ListSessionsOutput is the output schema for the list_sessions tool.
type ListSessionsOutput struct {
	Sessions []SessionOutput `json:"sessions"`
	Count    int             `json:"count"`
}

// SessionOutput describes one ingested paper.
type SessionOutput struct {
	SessionID  string `json:"session_id"`
	Filename   string `json:"filename"`
	PageCount  int    `json:"page_count"`
	ChunkCount int    `json:"chunk_count"`
	CreatedAt  string `json:"created_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_mentor",
		Description: "Ask the Socratic research mentor about an ingested paper",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve_passages",
		Description: "Retrieve the passages of an ingested paper closest to a query",
	}, s.handleRetrieve)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_paper",
			Description: "Ingest a local PDF and return its session id and summary",
		}, s.handleIngest)
	}

	if s.ports.Sessions != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_sessions",
			Description: "List ingested papers, newest first",
		}, s.handleListSessions)
	}
}

// handleIngest handles the ingest_paper tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Ingest == nil {
		return nil, IngestOutput{}, fmt.Errorf("%w: ingestion is not available", domain.ErrInvalidInput)
	}

	content, err := os.ReadFile(input.Path)
	if err != nil {
		return nil, IngestOutput{}, fmt.Errorf("%w: reading %s: %w", domain.ErrInvalidInput, input.Path, err)
	}

	result, err := s.ports.Ingest.Ingest(ctx, domain.IngestRequest{
		Filename: filepath.Base(input.Path),
		Content:  content,
	})
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{
		SessionID:  result.SessionID,
		Summary:    result.Summary,
		PageCount:  result.PageCount,
		ChunkCount: result.ChunkCount,
	}, nil
}

// handleAsk handles the ask_mentor tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	history := make([]domain.Turn, 0, len(input.History))
	for i, turn := range input.History {
		role := domain.Role(turn.Role)
		if !role.IsValid() {
			return nil, AskOutput{}, fmt.Errorf("%w: history[%d] has unknown role %q",
				domain.ErrInvalidInput, i, turn.Role)
		}
		history = append(history, domain.Turn{Role: role, Content: turn.Content})
	}

	reply, err := s.ports.Chat.Respond(ctx, domain.ChatRequest{
		SessionID:   input.SessionID,
		UserMessage: input.Message,
		History:     history,
		Lead:        input.Lead,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Reply:   reply.Reply,
		Sources: make([]SourceOutput, len(reply.Sources)),
	}
	for i, src := range reply.Sources {
		output.Sources[i] = SourceOutput{Page: src.Page, Excerpt: src.Excerpt}
	}

	return nil, output, nil
}

// handleRetrieve handles the retrieve_passages tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	if input.SessionID == "" {
		return nil, RetrieveOutput{}, fmt.Errorf("%w: session_id is required", domain.ErrInvalidInput)
	}

	grounding, err := s.ports.Retrieval.Retrieve(ctx, input.SessionID, input.Query, input.K)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Context:  grounding.Context,
		Passages: make([]PassageOutput, len(grounding.Results)),
		Count:    len(grounding.Results),
	}
	for i, r := range grounding.Results {
		output.Passages[i] = PassageOutput{
			Page:     r.Metadata.Page,
			Chunk:    r.Metadata.ChunkIndex,
			Distance: r.Distance,
			Text:     r.Text,
		}
	}

	return nil, output, nil
}

// handleListSessions handles the list_sessions tool invocation.
func (s *Server) handleListSessions(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListSessionsInput,
) (*mcp.CallToolResult, ListSessionsOutput, error) {
	if s.ports.Sessions == nil {
		return nil, ListSessionsOutput{Sessions: []SessionOutput{}}, nil
	}

	sessions, err := s.ports.Sessions.List(ctx)
	if err != nil {
		return nil, ListSessionsOutput{}, err
	}

	output := ListSessionsOutput{
		Sessions: toSessionOutputs(sessions),
		Count:    len(sessions),
	}
	return nil, output, nil
}

func toSessionOutputs(sessions []domain.Session) []SessionOutput {
	out := make([]SessionOutput, len(sessions))
	for i := range sessions {
		out[i] = SessionOutput{
			SessionID:  sessions[i].ID,
			Filename:   sessions[i].Filename,
			PageCount:  sessions[i].PageCount,
			ChunkCount: sessions[i].ChunkCount,
			CreatedAt:  sessions[i].CreatedAt.Format(time.RFC3339),
		}
	}
	return out
}

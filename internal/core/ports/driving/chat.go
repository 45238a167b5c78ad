package driving

import (
	"context"

	"github.com/custodia-labs/papermentor/internal/core/domain"
)

// ChatService runs one turn of the mentor conversation.
type ChatService interface {
	// Respond retrieves fresh context for the turn and asks the model for a reply.
	Respond(ctx context.Context, req domain.ChatRequest) (*domain.ChatReply, error)
}

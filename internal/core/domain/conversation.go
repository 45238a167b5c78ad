package domain

// Role tags a conversation turn.
type Role string

// Conversation roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid returns true for roles a caller may put in a history.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Turn is one message in a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// RetrievalResult is one ranked match from a session's vector collection.
// Lower distance means more similar.
type RetrievalResult struct {
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
	Distance float64       `json:"distance"`
}

// SourcePreview is the UI-facing attribution for a retrieved chunk.
type SourcePreview struct {
	Page    int    `json:"page"`
	Excerpt string `json:"excerpt"`
}

// GroundingContext is the assembled retrieval output for one turn.
type GroundingContext struct {
	// Context is the formatted block inserted into the generation request.
	Context string

	// Sources are the previews shown to the user, one per result.
	Sources []SourcePreview

	// Results are the raw ranked matches.
	Results []RetrievalResult
}

// ChatRequest is one turn of a mentor conversation.
// History is owned by the caller and is never modified.
type ChatRequest struct {
	SessionID   string `json:"session_id"`
	UserMessage string `json:"user_message"`
	History     []Turn `json:"chat_history"`
	Lead        bool   `json:"lead"`
}

// ChatReply is the mentor's answer and the passages it was grounded on.
type ChatReply struct {
	Reply   string          `json:"ai_message"`
	Sources []SourcePreview `json:"sources"`
}

package driven

// PromptStore provides access to LLM prompt templates.
// Prompt content is configuration, not code: users may replace any of them.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptMentorSystem is the mentor persona. No placeholders.
	PromptMentorSystem = "mentor_system"

	// PromptContextHeader wraps the retrieved passages.
	// The template expects one %s placeholder for the context block.
	PromptContextHeader = "context_header"

	// PromptLeadTurn replaces the user turn when the mentor opens the discussion.
	PromptLeadTurn = "lead_turn"

	// PromptSummarySystem instructs the model how to summarise a paper.
	PromptSummarySystem = "summary_system"

	// PromptSummaryRequest carries the paper text.
	// The template expects one %s placeholder for the text.
	PromptSummaryRequest = "summary_request"
)

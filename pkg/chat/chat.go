// Package chat holds the message shapes shared by the LLM adapters.
package chat

const (
	ChatRoleUser   = "user"
	ChatRoleAgent  = "assistant"
	ChatRoleSystem = "system"
)

// ChatMessage represents a single chat message in the conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ChatResponse is the text an LLM returned for a conversation.
type ChatResponse struct {
	Message string `json:"message,omitempty"`
	Model   string `json:"model,omitempty"`
}

// SystemAndUser builds the two-message conversation every advisor sends.
func SystemAndUser(system, user string) []ChatMessage {
	return []ChatMessage{
		{Role: ChatRoleSystem, Content: system},
		{Role: ChatRoleUser, Content: user},
	}
}

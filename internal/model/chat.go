package model

// ChatRole identifies who produced a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of the mentor conversation. The client sends the
// full history with each request; the service holds no conversation state.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// ProjectIdea is the structured suggestion returned by the idea generator.
type ProjectIdea struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

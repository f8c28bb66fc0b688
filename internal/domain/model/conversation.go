package model

// Turn roles. One exchange is exactly one user turn followed by one
// assistant turn.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Turn is a single entry in a user's conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

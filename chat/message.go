// Package chat holds the conversation state for a single open chat and
// coordinates one in-flight generation request at a time.
package chat

// Role identifies who produced a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn. Messages compare by value: two
// messages with the same role and text are the same message for removal.
type Message struct {
	Role Role
	Text string
}

// SystemMessage creates a system message.
func SystemMessage(text string) Message { return Message{Role: RoleSystem, Text: text} }

// UserMessage creates a user message.
func UserMessage(text string) Message { return Message{Role: RoleUser, Text: text} }

// AssistantMessage creates an assistant message.
func AssistantMessage(text string) Message { return Message{Role: RoleAssistant, Text: text} }

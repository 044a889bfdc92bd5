package models

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one message of a chat session. Sessions are append-only.
type ConversationTurn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// UserTurn builds a user message stamped with the current time.
func UserTurn(content string) ConversationTurn {
	return ConversationTurn{Role: RoleUser, Content: content, CreatedAt: time.Now()}
}

// AssistantTurn builds an assistant message stamped with the current time.
func AssistantTurn(content string) ConversationTurn {
	return ConversationTurn{Role: RoleAssistant, Content: content, CreatedAt: time.Now()}
}

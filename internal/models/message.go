package models

import (
	"strings"
	"time"
)

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is a single chat message. Only Role and Content go on the wire.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// SentAt is the local time the message was created, for display only
	SentAt time.Time `json:"-"`
	// Fallback marks the fixed reply appended when a turn failed
	Fallback bool `json:"-"`
	// Agent is the responder label reported by the service, if any
	Agent string `json:"-"`
}

// NewUserMessage creates a user message with trimmed content
func NewUserMessage(content string, at time.Time) Message {
	return Message{
		Role:    RoleUser,
		Content: strings.TrimSpace(content),
		SentAt:  at,
	}
}

// NewAssistantMessage creates an assistant reply
func NewAssistantMessage(content, agent string, at time.Time) Message {
	return Message{
		Role:    RoleAssistant,
		Content: content,
		SentAt:  at,
		Agent:   agent,
	}
}

// NewFallbackMessage creates the fixed reply shown when the service could not be reached
func NewFallbackMessage(at time.Time) Message {
	return Message{
		Role:     RoleAssistant,
		Content:  FallbackReply,
		SentAt:   at,
		Fallback: true,
	}
}

// IsUser returns true for user-authored messages
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// Sender returns the label a UI should show for the message author
func (m Message) Sender() string {
	if m.IsUser() {
		return SenderUser
	}
	if m.Agent != "" {
		return m.Agent
	}
	return SenderAssistant
}

// Package model defines data structures for the support assistant.
package model

import (
	"time"
)

// Role identifies who produced a history entry. Instructions to the model
// are not part of the history, so there is no system role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents one entry in a session's conversation history.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SendMessageRequest is the request to send a user message for one turn.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessageResponse is the response after a completed turn.
type SendMessageResponse struct {
	Reply   string   `json:"reply"`
	Intent  Intent   `json:"intent"`
	Message *Message `json:"message,omitempty"`
}

// ListMessagesResponse is the response for listing a session's history.
type ListMessagesResponse struct {
	Messages []Message `json:"messages"`
	Total    int       `json:"total"`
}

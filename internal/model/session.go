package model

import (
	"time"
)

// Session represents one continuous conversation owning one ConversationState.
type Session struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LastReply string    `json:"last_reply,omitempty"`
	TurnCount int       `json:"turn_count"`

	// State is per-session working memory; it is not part of the API surface.
	State *ConversationState `json:"-"`
}

// ListSessionsResponse is the response for listing sessions.
type ListSessionsResponse struct {
	Sessions []Session `json:"sessions"`
	Total    int       `json:"total"`
	HasMore  bool      `json:"has_more"`
}

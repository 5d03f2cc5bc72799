package model

import (
	"time"

	"github.com/google/uuid"
)

// PurchaseFields holds everything known so far about the invoice or invoice
// lines the customer would like refunded. Nil means the field has not been
// provided in any turn yet; extraction never fabricates values.
type PurchaseFields struct {
	InvoiceID         *int64   `json:"invoice_id"`
	InvoiceLineIDs    []int64  `json:"invoice_line_ids"`
	CustomerFirstName *string  `json:"customer_first_name"`
	CustomerLastName  *string  `json:"customer_last_name"`
	CustomerPhone     *string  `json:"customer_phone"`
	TrackName         *string  `json:"track_name"`
	AlbumTitle        *string  `json:"album_title"`
	ArtistName        *string  `json:"artist_name"`
	PurchaseDate      *string  `json:"purchase_date_iso_8601"`
}

// Merge folds newly extracted fields into f. A new value only overwrites when
// it is non-nil, so a field can never revert to unknown across turns.
func (f *PurchaseFields) Merge(update PurchaseFields) {
	if update.InvoiceID != nil {
		f.InvoiceID = update.InvoiceID
	}
	if len(update.InvoiceLineIDs) > 0 {
		f.InvoiceLineIDs = update.InvoiceLineIDs
	}
	if update.CustomerFirstName != nil {
		f.CustomerFirstName = update.CustomerFirstName
	}
	if update.CustomerLastName != nil {
		f.CustomerLastName = update.CustomerLastName
	}
	if update.CustomerPhone != nil {
		f.CustomerPhone = update.CustomerPhone
	}
	if update.TrackName != nil {
		f.TrackName = update.TrackName
	}
	if update.AlbumTitle != nil {
		f.AlbumTitle = update.AlbumTitle
	}
	if update.ArtistName != nil {
		f.ArtistName = update.ArtistName
	}
	if update.PurchaseDate != nil {
		f.PurchaseDate = update.PurchaseDate
	}
}

// HasRefundTarget reports whether an invoice or invoice lines were named.
func (f *PurchaseFields) HasRefundTarget() bool {
	return f.InvoiceID != nil || len(f.InvoiceLineIDs) > 0
}

// MissingIdentity returns the required identity fields not yet provided, in a
// fixed order so replies enumerating them are deterministic.
func (f *PurchaseFields) MissingIdentity() []string {
	var missing []string
	if f.CustomerFirstName == nil {
		missing = append(missing, "first name")
	}
	if f.CustomerLastName == nil {
		missing = append(missing, "last name")
	}
	if f.CustomerPhone == nil {
		missing = append(missing, "phone number")
	}
	return missing
}

// ConversationState accumulates one session's history and extracted fields.
// It is owned by exactly one session and mutated once per user turn.
type ConversationState struct {
	History   []Message      `json:"history"`
	Pending   PurchaseFields `json:"pending_fields"`
	LastReply string         `json:"last_reply"`
}

// NewConversationState returns an empty state for a fresh session.
func NewConversationState() *ConversationState {
	return &ConversationState{}
}

// AppendUser appends a user turn to the history.
func (s *ConversationState) AppendUser(sessionID, content string) Message {
	return s.append(sessionID, RoleUser, content)
}

// AppendAssistant appends an assistant turn and records it as the last reply.
func (s *ConversationState) AppendAssistant(sessionID, content string) Message {
	msg := s.append(sessionID, RoleAssistant, content)
	s.LastReply = content
	return msg
}

func (s *ConversationState) append(sessionID string, role Role, content string) Message {
	msg := Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	s.History = append(s.History, msg)
	return msg
}

// LatestUserText returns the content of the most recent user message.
func (s *ConversationState) LatestUserText() string {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == RoleUser {
			return s.History[i].Content
		}
	}
	return ""
}

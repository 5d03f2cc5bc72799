package middleware

import (
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
)

// maxMessageBytes bounds a single user message. Long messages only waste
// model tokens; nothing legitimate approaches this.
const maxMessageBytes = 100_000

// ValidateMessageContent checks a user message before it reaches the router.
func ValidateMessageContent(content string) error {
	switch {
	case content == "":
		return errors.New("content cannot be empty")
	case len(content) > maxMessageBytes:
		return errors.New("content exceeds maximum length")
	case !utf8.ValidString(content):
		return errors.New("content must be valid UTF-8")
	}
	return nil
}

// ValidateSessionID checks that a session ID is a well-formed UUID.
func ValidateSessionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid session ID format")
	}
	return nil
}

// ValidateTenantID checks a tenant identifier from JWT claims.
func ValidateTenantID(id string) error {
	if id == "" {
		return errors.New("tenant ID cannot be empty")
	}
	if len(id) > 64 {
		return errors.New("tenant ID exceeds maximum length")
	}
	return nil
}

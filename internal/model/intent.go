package model

import (
	"strings"
)

// Intent is the closed-set label describing what the user wants this turn.
type Intent string

const (
	IntentRefund     Intent = "refund"
	IntentMusicQuery Intent = "music_query"
	IntentHello      Intent = "hello"
	IntentUnknown    Intent = "unknown"
)

// ParseIntent maps classifier output onto the closed label set. Anything
// outside the set is IntentUnknown, which callers treat as the fallback path.
func ParseIntent(s string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentRefund:
		return IntentRefund
	case IntentMusicQuery:
		return IntentMusicQuery
	case IntentHello:
		return IntentHello
	default:
		return IntentUnknown
	}
}

package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestMergeNonNilWins(t *testing.T) {
	fields := PurchaseFields{}

	fields.Merge(PurchaseFields{
		CustomerFirstName: ptr("Jane"),
		CustomerPhone:     ptr("+1 555-0100"),
	})

	require.Equal(t, "Jane", *fields.CustomerFirstName)
	require.Equal(t, "+1 555-0100", *fields.CustomerPhone)
	require.Nil(t, fields.CustomerLastName)

	// A later extraction with nils must not clear earlier values.
	fields.Merge(PurchaseFields{
		CustomerLastName: ptr("Doe"),
	})

	require.Equal(t, "Jane", *fields.CustomerFirstName)
	require.Equal(t, "Doe", *fields.CustomerLastName)
	require.Equal(t, "+1 555-0100", *fields.CustomerPhone)
}

func TestMergeOverwritesWithNewValue(t *testing.T) {
	fields := PurchaseFields{InvoiceID: ptr(int64(3))}

	fields.Merge(PurchaseFields{InvoiceID: ptr(int64(7))})

	require.Equal(t, int64(7), *fields.InvoiceID)
}

func TestMergeIsMonotonicAcrossManyTurns(t *testing.T) {
	fields := PurchaseFields{}
	fields.Merge(PurchaseFields{TrackName: ptr("Yesterday")})

	for i := 0; i < 5; i++ {
		fields.Merge(PurchaseFields{})
	}

	require.NotNil(t, fields.TrackName)
	require.Equal(t, "Yesterday", *fields.TrackName)
}

func TestHasRefundTarget(t *testing.T) {
	require.False(t, (&PurchaseFields{}).HasRefundTarget())
	require.True(t, (&PurchaseFields{InvoiceID: ptr(int64(1))}).HasRefundTarget())
	require.True(t, (&PurchaseFields{InvoiceLineIDs: []int64{4, 5}}).HasRefundTarget())
}

func TestMissingIdentity(t *testing.T) {
	fields := PurchaseFields{}
	require.Equal(t, []string{"first name", "last name", "phone number"}, fields.MissingIdentity())

	fields.CustomerFirstName = ptr("Jane")
	fields.CustomerPhone = ptr("+1 555-0100")
	require.Equal(t, []string{"last name"}, fields.MissingIdentity())

	fields.CustomerLastName = ptr("Doe")
	require.Empty(t, fields.MissingIdentity())
}

func TestConversationStateAppend(t *testing.T) {
	state := NewConversationState()

	state.AppendUser("sess-1", "hello there")
	require.Equal(t, "hello there", state.LatestUserText())

	state.AppendAssistant("sess-1", "hi, how can I help?")
	require.Equal(t, "hi, how can I help?", state.LastReply)

	require.Len(t, state.History, 2)
	require.Equal(t, RoleUser, state.History[0].Role)
	require.Equal(t, RoleAssistant, state.History[1].Role)

	// A later user turn does not disturb the last reply until answered.
	state.AppendUser("sess-1", "one more thing")
	require.Equal(t, "one more thing", state.LatestUserText())
	require.Equal(t, "hi, how can I help?", state.LastReply)
}

func TestParseIntent(t *testing.T) {
	require.Equal(t, IntentRefund, ParseIntent("refund"))
	require.Equal(t, IntentRefund, ParseIntent("  Refund\n"))
	require.Equal(t, IntentMusicQuery, ParseIntent("music_query"))
	require.Equal(t, IntentHello, ParseIntent("HELLO"))
	require.Equal(t, IntentUnknown, ParseIntent("order_pizza"))
	require.Equal(t, IntentUnknown, ParseIntent(""))
}

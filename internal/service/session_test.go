package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuneport/support-assistant/internal/agent"
	"github.com/tuneport/support-assistant/internal/model"
	"github.com/tuneport/support-assistant/pkg/logger"
)

func TestSessionCreateAndGet(t *testing.T) {
	svc := NewSessionService(logger.NewNop())
	ctx := context.Background()

	sess, err := svc.Create(ctx, "tenant-1", "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	require.Equal(t, "tenant-1", sess.TenantID)
	require.Equal(t, "user-1", sess.UserID)
	require.Zero(t, sess.TurnCount)

	got, err := svc.Get(ctx, "tenant-1", sess.ID)
	require.NoError(t, err)
	require.Equal(t, sess.ID, got.ID)
}

func TestSessionGetWrongTenant(t *testing.T) {
	svc := NewSessionService(logger.NewNop())
	ctx := context.Background()

	sess, err := svc.Create(ctx, "tenant-1", "user-1")
	require.NoError(t, err)

	_, err = svc.Get(ctx, "tenant-2", sess.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionGetUnknownID(t *testing.T) {
	svc := NewSessionService(logger.NewNop())

	_, err := svc.Get(context.Background(), "tenant-1", "nope")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionList(t *testing.T) {
	svc := NewSessionService(logger.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, "tenant-1", "user-1")
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, "tenant-2", "user-2")
	require.NoError(t, err)

	resp, err := svc.List(ctx, "tenant-1", 10, 0)
	require.NoError(t, err)
	require.Equal(t, 3, resp.Total)
	require.Len(t, resp.Sessions, 3)
	require.False(t, resp.HasMore)
	for _, s := range resp.Sessions {
		require.Equal(t, "tenant-1", s.TenantID)
	}

	resp, err = svc.List(ctx, "tenant-1", 2, 0)
	require.NoError(t, err)
	require.Len(t, resp.Sessions, 2)
	require.True(t, resp.HasMore)

	resp, err = svc.List(ctx, "tenant-1", 2, 2)
	require.NoError(t, err)
	require.Len(t, resp.Sessions, 1)
	require.False(t, resp.HasMore)
}

func TestSessionDelete(t *testing.T) {
	svc := NewSessionService(logger.NewNop())
	ctx := context.Background()

	sess, err := svc.Create(ctx, "tenant-1", "user-1")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "tenant-1", sess.ID))

	_, err = svc.Get(ctx, "tenant-1", sess.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)

	require.ErrorIs(t, svc.Delete(ctx, "tenant-1", sess.ID), ErrSessionNotFound)
}

func TestSessionTurnUpdatesSession(t *testing.T) {
	svc := NewSessionService(logger.NewNop())
	ctx := context.Background()

	sess, err := svc.Create(ctx, "tenant-1", "user-1")
	require.NoError(t, err)

	run := func(sessionID string, state *model.ConversationState) agent.Outcome {
		state.AppendUser(sessionID, "hi")
		state.AppendAssistant(sessionID, "hello there")
		return agent.Outcome{Reply: "hello there", Intent: model.IntentHello}
	}

	outcome, reply, err := svc.Turn(ctx, "tenant-1", sess.ID, run)
	require.NoError(t, err)
	require.Equal(t, "hello there", outcome.Reply)
	require.NotNil(t, reply)
	require.Equal(t, model.RoleAssistant, reply.Role)
	require.Equal(t, "hello there", reply.Content)

	got, err := svc.Get(ctx, "tenant-1", sess.ID)
	require.NoError(t, err)
	require.Equal(t, "hello there", got.LastReply)
	require.Equal(t, 1, got.TurnCount)
	require.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestSessionTurnUnknownSession(t *testing.T) {
	svc := NewSessionService(logger.NewNop())

	_, _, err := svc.Turn(context.Background(), "tenant-1", "nope",
		func(string, *model.ConversationState) agent.Outcome { return agent.Outcome{} })
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionHistory(t *testing.T) {
	svc := NewSessionService(logger.NewNop())
	ctx := context.Background()

	sess, err := svc.Create(ctx, "tenant-1", "user-1")
	require.NoError(t, err)

	history, err := svc.History(ctx, "tenant-1", sess.ID)
	require.NoError(t, err)
	require.Empty(t, history)

	_, _, err = svc.Turn(ctx, "tenant-1", sess.ID,
		func(sessionID string, state *model.ConversationState) agent.Outcome {
			state.AppendUser(sessionID, "refund please")
			state.AppendAssistant(sessionID, "sure, tell me more")
			return agent.Outcome{Reply: "sure, tell me more"}
		})
	require.NoError(t, err)

	history, err = svc.History(ctx, "tenant-1", sess.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, model.RoleUser, history[0].Role)
	require.Equal(t, model.RoleAssistant, history[1].Role)
	require.Equal(t, sess.ID, history[0].SessionID)
}

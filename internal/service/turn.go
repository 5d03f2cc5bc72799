package service

import (
	"context"
	"time"

	"github.com/tuneport/support-assistant/internal/agent"
	"github.com/tuneport/support-assistant/internal/events"
	"github.com/tuneport/support-assistant/internal/model"
	"github.com/tuneport/support-assistant/pkg/logger"
	"github.com/tuneport/support-assistant/pkg/metrics"
)

// TurnService processes user messages: one message in, one reply out.
type TurnService struct {
	router    *agent.Router
	sessions  *SessionService
	publisher *events.Publisher
	simulate  bool
	logger    *logger.Logger
}

// NewTurnService creates a new turn service. publisher may be nil when audit
// events are disabled.
func NewTurnService(
	router *agent.Router,
	sessions *SessionService,
	publisher *events.Publisher,
	simulate bool,
	log *logger.Logger,
) *TurnService {
	return &TurnService{
		router:    router,
		sessions:  sessions,
		publisher: publisher,
		simulate:  simulate,
		logger:    log,
	}
}

// ProcessTurn runs one turn for the session and returns the single reply.
func (s *TurnService) ProcessTurn(ctx context.Context, tenantID, sessionID, content string) (*model.SendMessageResponse, error) {
	start := time.Now()

	outcome, replyMsg, err := s.sessions.Turn(ctx, tenantID, sessionID,
		func(sessionID string, state *model.ConversationState) agent.Outcome {
			return s.router.Turn(ctx, sessionID, state, content)
		})
	if err != nil {
		return nil, err
	}

	metrics.RecordTurn(string(outcome.Intent), string(outcome.Failure), time.Since(start).Seconds())
	if outcome.RefundAmount != nil {
		metrics.RecordRefund(*outcome.RefundAmount, s.simulate)
	}

	s.publishAudit(ctx, tenantID, sessionID, outcome)

	return &model.SendMessageResponse{
		Reply:   outcome.Reply,
		Intent:  outcome.Intent,
		Message: replyMsg,
	}, nil
}

func (s *TurnService) publishAudit(ctx context.Context, tenantID, sessionID string, outcome agent.Outcome) {
	s.publisher.Publish(ctx, events.Event{
		SessionID: sessionID,
		TenantID:  tenantID,
		Type:      events.TypeTurnCompleted,
		Intent:    outcome.Intent,
		Failure:   string(outcome.Failure),
	})

	if outcome.RefundAmount != nil {
		s.publisher.Publish(ctx, events.Event{
			SessionID:    sessionID,
			TenantID:     tenantID,
			Type:         events.TypeRefundExecuted,
			RefundAmount: outcome.RefundAmount,
			Simulated:    s.simulate,
		})
	}
}

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/tuneport/support-assistant/internal/model"
)

const (
	// StreamName is the name of the audit stream.
	StreamName = "SUPPORT_AUDIT"

	// SubjectPrefix is the prefix for all audit subjects.
	SubjectPrefix = "support"
)

// Type identifies an audit event kind.
type Type string

const (
	TypeTurnCompleted  Type = "turn_completed"
	TypeRefundExecuted Type = "refund_executed"
)

// Event is one audit record for downstream bookkeeping.
type Event struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	TenantID  string    `json:"tenant_id"`
	Type      Type      `json:"type"`
	CreatedAt time.Time `json:"created_at"`

	Intent       model.Intent `json:"intent,omitempty"`
	Failure      string       `json:"failure,omitempty"`
	RefundAmount *float64     `json:"refund_amount,omitempty"`
	Simulated    bool         `json:"simulated,omitempty"`
}

// Publisher writes audit events to JetStream. A nil Publisher is valid and
// drops everything, which is how deployments without NATS run.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher and ensures the audit stream exists.
func NewPublisher(ctx context.Context, client *Client) (*Publisher, error) {
	js := client.JetStream()

	if _, err := js.Stream(ctx, StreamName); err != nil {
		_, err = js.CreateStream(ctx, jetstream.StreamConfig{
			Name:        StreamName,
			Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
			Retention:   jetstream.LimitsPolicy,
			MaxAge:      90 * 24 * time.Hour,
			Storage:     jetstream.FileStorage,
			Replicas:    1,
			Description: "Support assistant turn and refund audit events",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stream: %w", err)
		}
	}

	return &Publisher{client: client}, nil
}

// Subject returns the subject for an event.
func Subject(tenantID, sessionID string, eventType Type) string {
	return fmt.Sprintf("%s.%s.%s.%s", SubjectPrefix, tenantID, sessionID, eventType)
}

// Publish writes one event. Failures are logged and swallowed so auditing
// never breaks a turn.
func (p *Publisher) Publish(ctx context.Context, event Event) {
	if p == nil {
		return
	}

	if event.ID == "" {
		event.ID = uuid.Must(uuid.NewV7()).String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.client.logger.Warn("failed to marshal audit event", zap.Error(err))
		return
	}

	subject := Subject(event.TenantID, event.SessionID, event.Type)
	if _, err := p.client.JetStream().Publish(ctx, subject, data); err != nil {
		p.client.logger.Warn("failed to publish audit event",
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}

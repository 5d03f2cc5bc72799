// Package service provides business logic for the support assistant.
package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tuneport/support-assistant/internal/agent"
	"github.com/tuneport/support-assistant/internal/model"
	"github.com/tuneport/support-assistant/pkg/logger"
	"github.com/tuneport/support-assistant/pkg/metrics"
)

// ErrSessionNotFound is returned when a session does not exist for a tenant.
var ErrSessionNotFound = errors.New("session not found")

// sessionEntry pairs a session with its own lock so one session's turn never
// blocks another session.
type sessionEntry struct {
	mu      sync.Mutex
	session *model.Session
}

// SessionService owns the in-memory session registry. State has no TTL and
// no persistence requirement: it lives for the session and is discarded on
// delete.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	logger   *logger.Logger
}

// NewSessionService creates a new session service.
func NewSessionService(log *logger.Logger) *SessionService {
	return &SessionService{
		sessions: make(map[string]*sessionEntry),
		logger:   log,
	}
}

// Create creates a new session with empty conversation state.
func (s *SessionService) Create(ctx context.Context, tenantID, userID string) (*model.Session, error) {
	now := time.Now()

	sess := &model.Session{
		ID:        uuid.Must(uuid.NewV7()).String(),
		TenantID:  tenantID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
		State:     model.NewConversationState(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = &sessionEntry{session: sess}
	s.mu.Unlock()

	metrics.SessionsActive.Inc()

	snapshot := *sess
	return &snapshot, nil
}

// Get retrieves a session snapshot by ID.
func (s *SessionService) Get(ctx context.Context, tenantID, sessionID string) (*model.Session, error) {
	entry, err := s.entry(tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	snapshot := *entry.session
	entry.mu.Unlock()

	return &snapshot, nil
}

// List retrieves session snapshots for a tenant, newest first.
func (s *SessionService) List(ctx context.Context, tenantID string, limit, offset int) (*model.ListSessionsResponse, error) {
	s.mu.RLock()
	var sessions []model.Session
	for _, entry := range s.sessions {
		entry.mu.Lock()
		if entry.session.TenantID == tenantID {
			sessions = append(sessions, *entry.session)
		}
		entry.mu.Unlock()
	}
	s.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})

	total := len(sessions)
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &model.ListSessionsResponse{
		Sessions: sessions[start:end],
		Total:    total,
		HasMore:  end < total,
	}, nil
}

// Delete removes a session and discards its state.
func (s *SessionService) Delete(ctx context.Context, tenantID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.sessions[sessionID]
	if !exists || entry.session.TenantID != tenantID {
		return ErrSessionNotFound
	}

	delete(s.sessions, sessionID)
	metrics.SessionsActive.Dec()

	return nil
}

// History returns a copy of the session's conversation history.
func (s *SessionService) History(ctx context.Context, tenantID, sessionID string) ([]model.Message, error) {
	entry, err := s.entry(tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	history := make([]model.Message, len(entry.session.State.History))
	copy(history, entry.session.State.History)
	entry.mu.Unlock()

	return history, nil
}

// Turn runs one turn against the session's state under the session lock and
// records the outcome on the session. Turns for the same session serialize;
// different sessions proceed concurrently.
func (s *SessionService) Turn(
	ctx context.Context,
	tenantID, sessionID string,
	run func(sessionID string, state *model.ConversationState) agent.Outcome,
) (agent.Outcome, *model.Message, error) {
	entry, err := s.entry(tenantID, sessionID)
	if err != nil {
		return agent.Outcome{}, nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	outcome := run(sessionID, entry.session.State)

	entry.session.LastReply = outcome.Reply
	entry.session.TurnCount++
	entry.session.UpdatedAt = time.Now()

	// The router appended the assistant message last.
	reply := entry.session.State.History[len(entry.session.State.History)-1]

	return outcome, &reply, nil
}

func (s *SessionService) entry(tenantID, sessionID string) (*sessionEntry, error) {
	s.mu.RLock()
	entry, exists := s.sessions[sessionID]
	s.mu.RUnlock()

	if !exists || entry.session.TenantID != tenantID {
		return nil, ErrSessionNotFound
	}

	return entry, nil
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/focusmate-ai/focus-service/internal/domain"
	"github.com/focusmate-ai/focus-service/internal/events"
	"github.com/focusmate-ai/focus-service/internal/repository"
	"github.com/focusmate-ai/focus-service/pkg/util"
)

// SessionService records and reports focus sessions.
type SessionService struct {
	sessions   repository.SessionRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewSessionService builds the service.
func NewSessionService(sessions repository.SessionRepository, dispatcher events.Dispatcher, logger *zap.Logger) *SessionService {
	return &SessionService{sessions: sessions, dispatcher: dispatcher, logger: logger}
}

// History returns the user's recent sessions together with aggregate stats.
func (s *SessionService) History(ctx context.Context, userID string, limit int) ([]domain.FocusSession, *domain.SessionStats, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, nil, err
	}
	stats, err := s.sessions.Stats(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return sessions, stats, nil
}

// Start records a new focus session.
func (s *SessionService) Start(ctx context.Context, userID, sessionType string, durationMinutes int, startedAt *time.Time, notes string) (*domain.FocusSession, error) {
	sessionType = strings.TrimSpace(sessionType)
	if sessionType == "" {
		return nil, util.NewValidationError("session_type is required", nil)
	}
	if durationMinutes <= 0 {
		return nil, util.NewValidationError("duration_minutes must be positive", nil)
	}

	session := &domain.FocusSession{
		UserID:          userID,
		SessionType:     sessionType,
		DurationMinutes: durationMinutes,
		Notes:           strings.TrimSpace(notes),
	}
	if startedAt != nil {
		session.StartedAt = *startedAt
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Complete marks a session finished and publishes a completion event.
func (s *SessionService) Complete(ctx context.Context, userID, sessionID string, completedAt *time.Time, notes string) (*domain.FocusSession, error) {
	if completedAt == nil {
		now := time.Now().UTC()
		completedAt = &now
	}
	session, err := s.sessions.Complete(ctx, userID, sessionID, completedAt, strings.TrimSpace(notes))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, util.NewNotFound("session", nil)
		}
		return nil, err
	}

	if err := s.dispatcher.Publish(ctx, events.Event{
		Type:       events.EventSessionCompleted,
		OccurredAt: time.Now().UTC(),
		Payload:    events.SessionCompletedPayload{Session: *session},
	}); err != nil {
		s.logger.Warn("failed to publish session completion", zap.Error(err))
	}
	return session, nil
}

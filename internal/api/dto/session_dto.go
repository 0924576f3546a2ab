package dto

import (
	"time"

	"github.com/focusmate-ai/focus-service/internal/domain"
)

// SessionCreateRequest payload for starting a focus session.
type SessionCreateRequest struct {
	SessionType     string     `json:"session_type"`
	DurationMinutes int        `json:"duration_minutes"`
	StartedAt       *time.Time `json:"started_at"`
	Notes           string     `json:"notes"`
}

// SessionCompleteRequest payload for finishing a session.
type SessionCompleteRequest struct {
	CompletedAt *time.Time `json:"completed_at"`
	Notes       string     `json:"notes"`
}

// SessionResponse is the public view of a focus session.
type SessionResponse struct {
	ID              string     `json:"id"`
	SessionType     string     `json:"session_type"`
	DurationMinutes int        `json:"duration_minutes"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// FromSession maps the domain model to its response shape.
func FromSession(s *domain.FocusSession) SessionResponse {
	return SessionResponse{
		ID:              s.ID,
		SessionType:     s.SessionType,
		DurationMinutes: s.DurationMinutes,
		StartedAt:       s.StartedAt,
		CompletedAt:     s.CompletedAt,
		Notes:           s.Notes,
		CreatedAt:       s.CreatedAt,
	}
}

// FromSessions maps a slice of sessions.
func FromSessions(sessions []domain.FocusSession) []SessionResponse {
	out := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, FromSession(&sessions[i]))
	}
	return out
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/focusmate-ai/focus-service/internal/domain"
	"github.com/focusmate-ai/focus-service/internal/persistence"
)

// SessionRepository defines persistence access for focus sessions.
type SessionRepository interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.FocusSession, error)
	Stats(ctx context.Context, userID string) (*domain.SessionStats, error)
	Create(ctx context.Context, session *domain.FocusSession) error
	Complete(ctx context.Context, userID, id string, completedAt *time.Time, notes string) (*domain.FocusSession, error)
}

type sessionRepository struct {
	db *persistence.Executor
}

// NewSessionRepository returns an executor-backed implementation.
func NewSessionRepository(db *persistence.Executor) SessionRepository {
	return &sessionRepository{db: db}
}

const sessionColumns = "id, user_id, session_type, duration_minutes, started_at, completed_at, notes, created_at"

func (r *sessionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.FocusSession, error) {
	if limit <= 0 {
		limit = 50
	}
	out, err := r.db.Query(ctx,
		"SELECT "+sessionColumns+" FROM focus_sessions WHERE user_id = $1 ORDER BY started_at DESC LIMIT $2",
		[]any{userID, limit})
	if err != nil {
		return nil, err
	}
	sessions := make([]domain.FocusSession, 0, len(out.Rows))
	for _, row := range out.Rows {
		sessions = append(sessions, *scanSession(row))
	}
	return sessions, nil
}

func (r *sessionRepository) Stats(ctx context.Context, userID string) (*domain.SessionStats, error) {
	out, err := r.db.Query(ctx, `
        SELECT
          COUNT(*) as total_sessions,
          COALESCE(SUM(duration_minutes), 0) as total_minutes,
          COALESCE(AVG(duration_minutes), 0) as avg_duration,
          COUNT(CASE WHEN completed_at IS NOT NULL THEN 1 END) as completed_sessions
        FROM focus_sessions
        WHERE user_id = $1`,
		[]any{userID})
	if err != nil {
		return nil, err
	}
	row := out.First()
	return &domain.SessionStats{
		TotalSessions:     row.Int64("total_sessions"),
		TotalMinutes:      row.Int64("total_minutes"),
		AvgDuration:       row.Float64("avg_duration"),
		CompletedSessions: row.Int64("completed_sessions"),
	}, nil
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.FocusSession) error {
	session.ID = uuid.NewString()
	startedAt := session.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}
	out, err := r.db.Query(ctx, `
        INSERT INTO focus_sessions (id, user_id, session_type, duration_minutes, started_at, notes, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        RETURNING `+sessionColumns,
		[]any{session.ID, session.UserID, session.SessionType, session.DurationMinutes, startedAt, session.Notes})
	if err != nil {
		return err
	}
	*session = *scanSession(out.First())
	return nil
}

func (r *sessionRepository) Complete(ctx context.Context, userID, id string, completedAt *time.Time, notes string) (*domain.FocusSession, error) {
	out, err := r.db.Query(ctx, `
        UPDATE focus_sessions SET completed_at = $1, notes = $2
        WHERE id = $3 AND user_id = $4
        RETURNING `+sessionColumns,
		[]any{completedAt, notes, id, userID})
	if err != nil {
		return nil, err
	}
	if len(out.Rows) == 0 {
		return nil, ErrNotFound
	}
	return scanSession(out.First()), nil
}

func scanSession(row persistence.Row) *domain.FocusSession {
	return &domain.FocusSession{
		ID:              row.String("id"),
		UserID:          row.String("user_id"),
		SessionType:     row.String("session_type"),
		DurationMinutes: int(row.Int64("duration_minutes")),
		StartedAt:       row.Time("started_at"),
		CompletedAt:     row.TimePtr("completed_at"),
		Notes:           row.String("notes"),
		CreatedAt:       row.Time("created_at"),
	}
}

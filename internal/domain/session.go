package domain

import "time"

// FocusSession records one timed focus period.
type FocusSession struct {
	ID              string
	UserID          string
	SessionType     string
	DurationMinutes int
	StartedAt       time.Time
	CompletedAt     *time.Time
	Notes           string
	CreatedAt       time.Time
}

// SessionStats aggregates a user's focus history.
type SessionStats struct {
	TotalSessions     int64   `json:"total_sessions"`
	TotalMinutes      int64   `json:"total_minutes"`
	AvgDuration       float64 `json:"avg_duration"`
	CompletedSessions int64   `json:"completed_sessions"`
}

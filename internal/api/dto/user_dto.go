package dto

import (
	"github.com/focusmate-ai/focus-service/internal/domain"
	"github.com/focusmate-ai/focus-service/internal/service"
)

// ProfileUpdateRequest payload for profile edits. Blank fields keep
// their current value.
type ProfileUpdateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserDataResponse bundles profile, tasks and session history.
type UserDataResponse struct {
	User      UserResponse         `json:"user"`
	Tasks     []TaskResponse       `json:"tasks"`
	TaskStats domain.TaskStats     `json:"taskStats"`
	Sessions  []SessionResponse    `json:"sessions"`
	Stats     *domain.SessionStats `json:"sessionStats"`
}

// FromUserData maps the aggregate to its response shape.
func FromUserData(d *service.UserData) UserDataResponse {
	return UserDataResponse{
		User:      FromUser(d.User),
		Tasks:     FromTasks(d.Tasks),
		TaskStats: d.TaskStats,
		Sessions:  FromSessions(d.Sessions),
		Stats:     d.Stats,
	}
}

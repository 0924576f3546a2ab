package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/focusmate-ai/focus-service/internal/domain"
	"github.com/focusmate-ai/focus-service/internal/repository"
	"github.com/focusmate-ai/focus-service/pkg/util"
)

// UserData bundles everything the dashboard needs in one round trip.
type UserData struct {
	User      *domain.User
	Tasks     []domain.Task
	TaskStats domain.TaskStats
	Sessions  []domain.FocusSession
	Stats     *domain.SessionStats
}

// UserService serves profile and aggregate data reads.
type UserService struct {
	users    repository.UserRepository
	tasks    repository.TaskRepository
	sessions repository.SessionRepository
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, tasks repository.TaskRepository, sessions repository.SessionRepository) *UserService {
	return &UserService{users: users, tasks: tasks, sessions: sessions}
}

// Profile returns the account record for the authenticated user.
func (s *UserService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, util.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes username and/or email. Blank fields keep their
// current value.
func (s *UserService) UpdateProfile(ctx context.Context, userID, username, email string) (*domain.User, error) {
	current, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" {
		username = current.Username
	}
	if email == "" {
		email = current.Email
	} else if !strings.Contains(email, "@") {
		return nil, util.NewValidationError("invalid email address", nil)
	}

	updated, err := s.users.UpdateProfile(ctx, userID, username, email)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, util.NewValidationError("email already in use", nil)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, util.NewNotFound("user", nil)
		}
		return nil, err
	}
	return updated, nil
}

// Data aggregates the user's profile, tasks and recent sessions.
func (s *UserService) Data(ctx context.Context, userID string) (*UserData, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	stats, err := s.sessions.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserData{
		User:      user,
		Tasks:     tasks,
		TaskStats: computeTaskStats(tasks),
		Sessions:  sessions,
		Stats:     stats,
	}, nil
}

func computeTaskStats(tasks []domain.Task) domain.TaskStats {
	stats := domain.TaskStats{TotalTasks: len(tasks)}
	for _, t := range tasks {
		if t.Status == domain.TaskStatusCompleted {
			stats.CompletedTasks++
		} else {
			stats.PendingTasks++
		}
	}
	if stats.TotalTasks > 0 {
		rate := float64(stats.CompletedTasks) / float64(stats.TotalTasks) * 100
		stats.CompletionRate = math.Round(rate*100) / 100
	}
	return stats
}

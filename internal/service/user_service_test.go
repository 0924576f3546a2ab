package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focusmate-ai/focus-service/internal/domain"
	"github.com/focusmate-ai/focus-service/internal/repository"
	"github.com/focusmate-ai/focus-service/internal/service"
	"github.com/focusmate-ai/focus-service/pkg/util"
)

type fakeSessionRepo struct {
	sessions []domain.FocusSession
	stats    domain.SessionStats
}

func (f *fakeSessionRepo) ListByUser(_ context.Context, userID string, limit int) ([]domain.FocusSession, error) {
	var out []domain.FocusSession
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSessionRepo) Stats(_ context.Context, _ string) (*domain.SessionStats, error) {
	stats := f.stats
	return &stats, nil
}

func (f *fakeSessionRepo) Create(_ context.Context, session *domain.FocusSession) error {
	session.ID = uuid.NewString()
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now()
	}
	session.CreatedAt = time.Now()
	f.sessions = append(f.sessions, *session)
	return nil
}

func (f *fakeSessionRepo) Complete(_ context.Context, userID, id string, completedAt *time.Time, notes string) (*domain.FocusSession, error) {
	for i := range f.sessions {
		if f.sessions[i].ID == id && f.sessions[i].UserID == userID {
			when := time.Now()
			if completedAt != nil {
				when = *completedAt
			}
			f.sessions[i].CompletedAt = &when
			if notes != "" {
				f.sessions[i].Notes = notes
			}
			return &f.sessions[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func TestUserDataAggregatesTaskStats(t *testing.T) {
	users := newFakeUserRepo()
	require.NoError(t, users.CreateUnverified(context.Background(), &domain.User{
		Username: "Ada", Email: "ada@example.com", PasswordHash: "x",
	}))
	user := users.byEmail["ada@example.com"]

	tasks := newFakeTaskRepo()
	makeTask := func(status domain.TaskStatus) {
		tasks.tasks[uuid.NewString()] = &domain.Task{
			ID: uuid.NewString(), UserID: user.ID, Title: "t", Status: status,
		}
	}
	makeTask(domain.TaskStatusCompleted)
	makeTask(domain.TaskStatusPending)
	makeTask(domain.TaskStatusPending)

	sessions := &fakeSessionRepo{stats: domain.SessionStats{TotalSessions: 2, TotalMinutes: 50}}

	svc := service.NewUserService(users, tasks, sessions)
	data, err := svc.Data(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, data.TaskStats.TotalTasks)
	assert.Equal(t, 1, data.TaskStats.CompletedTasks)
	assert.Equal(t, 2, data.TaskStats.PendingTasks)
	assert.InDelta(t, 33.33, data.TaskStats.CompletionRate, 0.001, "rate is rounded to two decimals")
	assert.Equal(t, int64(2), data.Stats.TotalSessions)
}

func TestUserDataEmptyTaskListHasZeroRate(t *testing.T) {
	users := newFakeUserRepo()
	require.NoError(t, users.CreateUnverified(context.Background(), &domain.User{
		Username: "Ada", Email: "ada@example.com", PasswordHash: "x",
	}))
	user := users.byEmail["ada@example.com"]

	svc := service.NewUserService(users, newFakeTaskRepo(), &fakeSessionRepo{})
	data, err := svc.Data(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Zero(t, data.TaskStats.CompletionRate)
}

func TestProfileUnknownUser(t *testing.T) {
	svc := service.NewUserService(newFakeUserRepo(), newFakeTaskRepo(), &fakeSessionRepo{})

	_, err := svc.Profile(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, util.IsCode(err, "NOT_FOUND"))
}

func TestUpdateProfileKeepsBlankFields(t *testing.T) {
	users := newFakeUserRepo()
	require.NoError(t, users.CreateUnverified(context.Background(), &domain.User{
		Username: "Ada", Email: "ada@example.com", PasswordHash: "x",
	}))
	user := users.byEmail["ada@example.com"]

	svc := service.NewUserService(users, newFakeTaskRepo(), &fakeSessionRepo{})
	updated, err := svc.UpdateProfile(context.Background(), user.ID, "Ada L.", "")
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", updated.Username)
	assert.Equal(t, "ada@example.com", updated.Email)
}

func TestUpdateProfileDuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	require.NoError(t, users.CreateUnverified(context.Background(), &domain.User{
		Username: "Ada", Email: "ada@example.com", PasswordHash: "x",
	}))
	require.NoError(t, users.CreateUnverified(context.Background(), &domain.User{
		Username: "Grace", Email: "grace@example.com", PasswordHash: "x",
	}))
	grace := users.byEmail["grace@example.com"]

	svc := service.NewUserService(users, newFakeTaskRepo(), &fakeSessionRepo{})
	_, err := svc.UpdateProfile(context.Background(), grace.ID, "", "ada@example.com")
	require.Error(t, err)
	assert.True(t, util.IsCode(err, "VALIDATION_FAILED"))
}

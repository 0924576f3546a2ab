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

type fakeTaskRepo struct {
	tasks map[string]*domain.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[string]*domain.Task{}}
}

func (f *fakeTaskRepo) ListByUser(_ context.Context, userID string) ([]domain.Task, error) {
	var out []domain.Task
	for _, t := range f.tasks {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) Create(_ context.Context, task *domain.Task) error {
	task.ID = uuid.NewString()
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	clone := *task
	f.tasks[task.ID] = &clone
	return nil
}

func (f *fakeTaskRepo) Update(_ context.Context, userID string, task *domain.Task) (*domain.Task, error) {
	existing, ok := f.tasks[task.ID]
	if !ok || existing.UserID != userID {
		return nil, repository.ErrNotFound
	}
	clone := *task
	clone.UpdatedAt = time.Now()
	f.tasks[task.ID] = &clone
	return &clone, nil
}

func (f *fakeTaskRepo) Delete(_ context.Context, userID, id string) error {
	existing, ok := f.tasks[id]
	if !ok || existing.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskRepo) Toggle(_ context.Context, userID, id string) (*domain.Task, error) {
	existing, ok := f.tasks[id]
	if !ok || existing.UserID != userID {
		return nil, repository.ErrNotFound
	}
	if existing.Status == domain.TaskStatusCompleted {
		existing.Status = domain.TaskStatusPending
		existing.CompletedAt = nil
	} else {
		now := time.Now()
		existing.Status = domain.TaskStatusCompleted
		existing.CompletedAt = &now
	}
	clone := *existing
	return &clone, nil
}

func strPtr(s string) *string { return &s }

func TestCreateTaskDefaults(t *testing.T) {
	svc := service.NewTaskService(newFakeTaskRepo())

	task, err := svc.Create(context.Background(), "user-1", service.TaskInput{
		Title: strPtr("  Write report  "),
	})
	require.NoError(t, err)
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, domain.TaskPriorityMedium, task.Priority)
	assert.Equal(t, domain.TaskStatusPending, task.Status)
	assert.Nil(t, task.CompletedAt)
	assert.Equal(t, "user-1", task.UserID)
}

func TestCreateTaskRequiresTitle(t *testing.T) {
	svc := service.NewTaskService(newFakeTaskRepo())

	for _, input := range []service.TaskInput{
		{},
		{Title: strPtr("   ")},
	} {
		_, err := svc.Create(context.Background(), "user-1", input)
		require.Error(t, err)
		assert.True(t, util.IsCode(err, "VALIDATION_FAILED"))
	}
}

func TestCreateTaskRejectsBadEnums(t *testing.T) {
	svc := service.NewTaskService(newFakeTaskRepo())

	_, err := svc.Create(context.Background(), "user-1", service.TaskInput{
		Title:    strPtr("x"),
		Priority: strPtr("urgent"),
	})
	require.Error(t, err)
	assert.True(t, util.IsCode(err, "VALIDATION_FAILED"))

	_, err = svc.Create(context.Background(), "user-1", service.TaskInput{
		Title:  strPtr("x"),
		Status: strPtr("done"),
	})
	require.Error(t, err)
	assert.True(t, util.IsCode(err, "VALIDATION_FAILED"))
}

func TestToggleFlipsStatus(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := service.NewTaskService(repo)

	created, err := svc.Create(context.Background(), "user-1", service.TaskInput{Title: strPtr("x")})
	require.NoError(t, err)

	toggled, err := svc.Toggle(context.Background(), "user-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, toggled.Status)
	require.NotNil(t, toggled.CompletedAt)

	toggled, err = svc.Toggle(context.Background(), "user-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPending, toggled.Status)
	assert.Nil(t, toggled.CompletedAt)
}

func TestTaskOperationsScopedToOwner(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := service.NewTaskService(repo)

	created, err := svc.Create(context.Background(), "user-1", service.TaskInput{Title: strPtr("mine")})
	require.NoError(t, err)

	// another user cannot touch the task through any operation
	_, err = svc.Toggle(context.Background(), "user-2", created.ID)
	assert.True(t, util.IsCode(err, "NOT_FOUND"))

	err = svc.Delete(context.Background(), "user-2", created.ID)
	assert.True(t, util.IsCode(err, "NOT_FOUND"))

	_, err = svc.Update(context.Background(), "user-2", created.ID, service.TaskInput{Title: strPtr("stolen")})
	assert.True(t, util.IsCode(err, "NOT_FOUND"))

	tasks, err := svc.List(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestUpdateTaskCompletionTimestamps(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := service.NewTaskService(repo)

	created, err := svc.Create(context.Background(), "user-1", service.TaskInput{Title: strPtr("x")})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), "user-1", created.ID, service.TaskInput{
		Status: strPtr("completed"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)

	updated, err = svc.Update(context.Background(), "user-1", created.ID, service.TaskInput{
		Status: strPtr("pending"),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.CompletedAt)
}

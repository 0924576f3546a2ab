package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/focusmate-ai/focus-service/internal/domain"
	"github.com/focusmate-ai/focus-service/internal/repository"
	"github.com/focusmate-ai/focus-service/pkg/util"
)

// TaskInput carries client-supplied task fields. Pointer fields
// distinguish "not sent" from "sent empty" on update.
type TaskInput struct {
	Title       *string
	Description *string
	Priority    *string
	Status      *string
	DueDate     *time.Time
}

// TaskService implements task CRUD scoped to the owning user.
type TaskService struct {
	tasks repository.TaskRepository
}

// NewTaskService builds the service.
func NewTaskService(tasks repository.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

// List returns all tasks owned by the user, newest first.
func (s *TaskService) List(ctx context.Context, userID string) ([]domain.Task, error) {
	return s.tasks.ListByUser(ctx, userID)
}

// Create stores a new task. Title is required; priority defaults to
// medium and status to pending.
func (s *TaskService) Create(ctx context.Context, userID string, input TaskInput) (*domain.Task, error) {
	title := ""
	if input.Title != nil {
		title = strings.TrimSpace(*input.Title)
	}
	if title == "" {
		return nil, util.NewValidationError("title is required", nil)
	}

	task := &domain.Task{
		UserID:   userID,
		Title:    title,
		Priority: domain.TaskPriorityMedium,
		Status:   domain.TaskStatusPending,
		DueDate:  input.DueDate,
	}
	if input.Description != nil {
		task.Description = strings.TrimSpace(*input.Description)
	}
	if input.Priority != nil {
		p, err := parsePriority(*input.Priority)
		if err != nil {
			return nil, err
		}
		task.Priority = p
	}
	if input.Status != nil {
		st, err := parseStatus(*input.Status)
		if err != nil {
			return nil, err
		}
		task.Status = st
	}
	if task.Status == domain.TaskStatusCompleted {
		now := time.Now().UTC()
		task.CompletedAt = &now
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Update applies the supplied fields to an existing task owned by the user.
func (s *TaskService) Update(ctx context.Context, userID, taskID string, input TaskInput) (*domain.Task, error) {
	existing, err := s.find(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, util.NewValidationError("title is required", nil)
		}
		existing.Title = title
	}
	if input.Description != nil {
		existing.Description = strings.TrimSpace(*input.Description)
	}
	if input.Priority != nil {
		p, err := parsePriority(*input.Priority)
		if err != nil {
			return nil, err
		}
		existing.Priority = p
	}
	if input.Status != nil {
		st, err := parseStatus(*input.Status)
		if err != nil {
			return nil, err
		}
		if st != existing.Status {
			if st == domain.TaskStatusCompleted {
				now := time.Now().UTC()
				existing.CompletedAt = &now
			} else {
				existing.CompletedAt = nil
			}
		}
		existing.Status = st
	}
	if input.DueDate != nil {
		existing.DueDate = input.DueDate
	}

	updated, err := s.tasks.Update(ctx, userID, existing)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, util.NewNotFound("task", nil)
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a task owned by the user.
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	if err := s.tasks.Delete(ctx, userID, taskID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return util.NewNotFound("task", nil)
		}
		return err
	}
	return nil
}

// Toggle flips a task between pending and completed.
func (s *TaskService) Toggle(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	task, err := s.tasks.Toggle(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, util.NewNotFound("task", nil)
		}
		return nil, err
	}
	return task, nil
}

func (s *TaskService) find(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == taskID {
			return &tasks[i], nil
		}
	}
	return nil, util.NewNotFound("task", nil)
}

func parsePriority(raw string) (domain.TaskPriority, error) {
	switch domain.TaskPriority(strings.ToLower(strings.TrimSpace(raw))) {
	case domain.TaskPriorityLow:
		return domain.TaskPriorityLow, nil
	case domain.TaskPriorityMedium:
		return domain.TaskPriorityMedium, nil
	case domain.TaskPriorityHigh:
		return domain.TaskPriorityHigh, nil
	default:
		return "", util.NewValidationError("priority must be low, medium or high", nil)
	}
}

func parseStatus(raw string) (domain.TaskStatus, error) {
	switch domain.TaskStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case domain.TaskStatusPending:
		return domain.TaskStatusPending, nil
	case domain.TaskStatusCompleted:
		return domain.TaskStatusCompleted, nil
	default:
		return "", util.NewValidationError("status must be pending or completed", nil)
	}
}

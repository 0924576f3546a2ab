package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/focusmate-ai/focus-service/internal/domain"
	"github.com/focusmate-ai/focus-service/internal/persistence"
)

// TaskRepository defines persistence access for tasks. Every statement
// binds the owning user id; a client-supplied user id is never trusted.
type TaskRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, userID string, task *domain.Task) (*domain.Task, error)
	Delete(ctx context.Context, userID, id string) error
	Toggle(ctx context.Context, userID, id string) (*domain.Task, error)
}

type taskRepository struct {
	db *persistence.Executor
}

// NewTaskRepository returns an executor-backed implementation.
func NewTaskRepository(db *persistence.Executor) TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = "id, user_id, title, description, priority, status, due_date, completed_at, created_at, updated_at"

func (r *taskRepository) ListByUser(ctx context.Context, userID string) ([]domain.Task, error) {
	out, err := r.db.Query(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = $1 ORDER BY created_at DESC",
		[]any{userID})
	if err != nil {
		return nil, err
	}
	tasks := make([]domain.Task, 0, len(out.Rows))
	for _, row := range out.Rows {
		tasks = append(tasks, *scanTask(row))
	}
	return tasks, nil
}

// Create inserts a new row unconditionally: two identical create requests
// produce two distinct tasks.
func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	task.ID = uuid.NewString()
	out, err := r.db.Query(ctx, `
        INSERT INTO tasks (id, user_id, title, description, priority, status, due_date, completed_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
        RETURNING `+taskColumns,
		[]any{task.ID, task.UserID, task.Title, task.Description, task.Priority, task.Status, task.DueDate, task.CompletedAt})
	if err != nil {
		return err
	}
	*task = *scanTask(out.First())
	return nil
}

func (r *taskRepository) Update(ctx context.Context, userID string, task *domain.Task) (*domain.Task, error) {
	out, err := r.db.Query(ctx, `
        UPDATE tasks
        SET title = $1, description = $2, priority = $3, status = $4, due_date = $5, completed_at = $6, updated_at = NOW()
        WHERE id = $7 AND user_id = $8
        RETURNING `+taskColumns,
		[]any{task.Title, task.Description, task.Priority, task.Status, task.DueDate, task.CompletedAt, task.ID, userID})
	if err != nil {
		return nil, err
	}
	if len(out.Rows) == 0 {
		return nil, ErrNotFound
	}
	return scanTask(out.First()), nil
}

func (r *taskRepository) Delete(ctx context.Context, userID, id string) error {
	out, err := r.db.Query(ctx,
		"DELETE FROM tasks WHERE id = $1 AND user_id = $2 RETURNING id",
		[]any{id, userID})
	if err != nil {
		return err
	}
	if len(out.Rows) == 0 {
		return ErrNotFound
	}
	return nil
}

// Toggle flips a task between pending and completed in one transaction so
// the read and the write see the same row state.
func (r *taskRepository) Toggle(ctx context.Context, userID, id string) (*domain.Task, error) {
	var toggled *domain.Task

	err := r.db.Transaction(ctx, func(tx *persistence.Tx) error {
		current, err := tx.Query(ctx,
			"SELECT id, status FROM tasks WHERE id = $1 AND user_id = $2",
			[]any{id, userID})
		if err != nil {
			return err
		}
		if len(current.Rows) == 0 {
			return ErrNotFound
		}

		newStatus := domain.TaskStatusCompleted
		var completedAt *time.Time
		if current.First().String("status") == string(domain.TaskStatusCompleted) {
			newStatus = domain.TaskStatusPending
		} else {
			now := time.Now().UTC()
			completedAt = &now
		}

		out, err := tx.Query(ctx, `
        UPDATE tasks SET status = $1, completed_at = $2, updated_at = NOW()
        WHERE id = $3 AND user_id = $4
        RETURNING `+taskColumns,
			[]any{newStatus, completedAt, id, userID})
		if err != nil {
			return err
		}
		if len(out.Rows) == 0 {
			return ErrNotFound
		}
		toggled = scanTask(out.First())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toggled, nil
}

func scanTask(row persistence.Row) *domain.Task {
	return &domain.Task{
		ID:          row.String("id"),
		UserID:      row.String("user_id"),
		Title:       row.String("title"),
		Description: row.String("description"),
		Priority:    domain.TaskPriority(row.String("priority")),
		Status:      domain.TaskStatus(row.String("status")),
		DueDate:     row.TimePtr("due_date"),
		CompletedAt: row.TimePtr("completed_at"),
		CreatedAt:   row.Time("created_at"),
		UpdatedAt:   row.Time("updated_at"),
	}
}

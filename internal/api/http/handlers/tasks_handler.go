package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/focusmate-ai/focus-service/internal/api/dto"
	"github.com/focusmate-ai/focus-service/internal/api/respond"
	"github.com/focusmate-ai/focus-service/internal/auth"
	"github.com/focusmate-ai/focus-service/internal/service"
	"github.com/focusmate-ai/focus-service/pkg/util"
)

// TasksHandler exposes task CRUD for the authenticated user.
type TasksHandler struct {
	tasks *service.TaskService
}

// NewTasksHandler constructs the handler.
func NewTasksHandler(taskService *service.TaskService) *TasksHandler {
	return &TasksHandler{tasks: taskService}
}

// List handles GET /tasks.
func (h *TasksHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthenticated("authentication required", nil)
	}

	tasks, err := h.tasks.List(c.UserContext(), principal.ID)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, fiber.Map{"tasks": dto.FromTasks(tasks)}, "")
}

// Create handles POST /tasks.
func (h *TasksHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthenticated("authentication required", nil)
	}

	var req dto.TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}

	task, err := h.tasks.Create(c.UserContext(), principal.ID, taskInput(req))
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusCreated, fiber.Map{"task": dto.FromTask(task)}, "Task created")
}

// Update handles PUT /tasks/:id.
func (h *TasksHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthenticated("authentication required", nil)
	}

	var req dto.TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}

	task, err := h.tasks.Update(c.UserContext(), principal.ID, c.Params("id"), taskInput(req))
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, fiber.Map{"task": dto.FromTask(task)}, "Task updated")
}

// Delete handles DELETE /tasks/:id.
func (h *TasksHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthenticated("authentication required", nil)
	}

	if err := h.tasks.Delete(c.UserContext(), principal.ID, c.Params("id")); err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, nil, "Task deleted")
}

// Toggle handles PUT /tasks/:id/toggle.
func (h *TasksHandler) Toggle(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthenticated("authentication required", nil)
	}

	task, err := h.tasks.Toggle(c.UserContext(), principal.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, fiber.Map{"task": dto.FromTask(task)}, "Task toggled")
}

func taskInput(req dto.TaskRequest) service.TaskInput {
	return service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		DueDate:     req.DueDate,
	}
}

package api

import (
	"context"
	"errors"
	"time"

	domain "github.com/example/task-color-api/domain/task"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// healthTimeFormat is RFC 3339 with millisecond precision.
const healthTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// TaskService is the task behavior the HTTP handlers depend on.
type TaskService interface {
	Palette() domain.Palette
	List(ctx context.Context) ([]domain.Task, error)
	Create(ctx context.Context, in domain.CreateTask) (*domain.Task, error)
	Update(ctx context.Context, id string, upd domain.UpdateTask) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
}

// Handlers contains the HTTP handlers for the task API.
type Handlers struct {
	service TaskService
	logger  types.Logger
}

// NewHandlers creates handlers backed by service.
func NewHandlers(service TaskService, logger types.Logger) *Handlers {
	return &Handlers{
		service: service,
		logger:  logger,
	}
}

// withInput runs validate on the raw request body and calls handle only when
// it succeeds. A validation failure ends the request with 400.
func withInput[T any](validate func(body []byte) (T, error), handle func(c *fiber.Ctx, in T) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in, err := validate(c.Body())
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		}
		return handle(c, in)
	}
}

// HealthCheck handles GET /health.
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC().Format(healthTimeFormat),
	})
}

// ListTasks handles GET /api/tasks.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	tasks, err := h.service.List(c.UserContext())
	if err != nil {
		return h.fail(c, "list", err)
	}
	return c.JSON(tasks)
}

// CreateTask handles POST /api/tasks.
func (h *Handlers) CreateTask(c *fiber.Ctx, in domain.CreateTask) error {
	t, err := h.service.Create(c.UserContext(), in)
	if err != nil {
		return h.fail(c, "create", err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

// UpdateTask handles PUT /api/tasks/:id.
func (h *Handlers) UpdateTask(c *fiber.Ctx, upd domain.UpdateTask) error {
	t, err := h.service.Update(c.UserContext(), c.Params("id"), upd)
	if err != nil {
		return h.fail(c, "update", err)
	}
	return c.JSON(t)
}

// DeleteTask handles DELETE /api/tasks/:id.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, "delete", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// fail maps a service error to its HTTP reply. Store failures are logged and
// reported without detail.
func (h *Handlers) fail(c *fiber.Ctx, op string, err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: verr.Message})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: msgTaskNotFound})
	default:
		h.logger.WithError(err).Error("Task request failed", "operation", op, "path", c.Path())
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: msgInternalError})
	}
}

package task

import (
	"context"
	"encoding/json"
	"errors"

	domain "github.com/example/task-color-api/domain/task"
	"github.com/go-monolith/mono"
)

// errInternal is what request-reply callers see for store failures.
var errInternal = errors.New("internal server error")

// listTasks handles the task.list service request.
func (m *Module) listTasks(ctx context.Context, _ ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.service.List(ctx)
	if err != nil {
		return ListTasksResponse{}, m.publicError("list", err)
	}
	return ListTasksResponse{Tasks: tasks, Total: len(tasks)}, nil
}

// createTask handles the task.create service request. The payload is the
// same body POST /api/tasks accepts.
func (m *Module) createTask(ctx context.Context, req json.RawMessage, _ *mono.Msg) (domain.Task, error) {
	in, err := domain.ParseCreate(req, m.service.Palette())
	if err != nil {
		return domain.Task{}, err
	}

	t, err := m.service.Create(ctx, in)
	if err != nil {
		return domain.Task{}, m.publicError("create", err)
	}
	return *t, nil
}

// updateTask handles the task.update service request.
func (m *Module) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (domain.Task, error) {
	if req.ID == "" {
		return domain.Task{}, errors.New("id is required")
	}

	upd, err := domain.ParseUpdate(req.Changes, m.service.Palette())
	if err != nil {
		return domain.Task{}, err
	}

	t, err := m.service.Update(ctx, req.ID, upd)
	if err != nil {
		return domain.Task{}, m.publicError("update", err)
	}
	return *t, nil
}

// deleteTask handles the task.delete service request.
func (m *Module) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if req.ID == "" {
		return DeleteTaskResponse{Deleted: false}, errors.New("id is required")
	}

	if err := m.service.Delete(ctx, req.ID); err != nil {
		return DeleteTaskResponse{Deleted: false, ID: req.ID}, m.publicError("delete", err)
	}
	return DeleteTaskResponse{Deleted: true, ID: req.ID}, nil
}

// publicError keeps ErrNotFound and hides everything else behind
// errInternal, logging the detail.
func (m *Module) publicError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotFound
	}
	m.logger.WithError(err).Error("Task service request failed", "operation", op)
	return errInternal
}

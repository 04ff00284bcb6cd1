package task

import (
	"encoding/json"

	domain "github.com/example/task-color-api/domain/task"
)

// ListTasksRequest is the request for listing tasks.
type ListTasksRequest struct{}

// ListTasksResponse is the response containing all tasks, newest first.
type ListTasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
	Total int           `json:"total"`
}

// UpdateTaskRequest is the request for updating a task. Changes carries the
// same partial body the HTTP API accepts.
type UpdateTaskRequest struct {
	ID      string          `json:"id"`
	Changes json.RawMessage `json:"changes"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	ID string `json:"id"`
}

// DeleteTaskResponse is the response after deleting a task.
type DeleteTaskResponse struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

package api

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Error messages returned to clients.
const (
	msgTaskNotFound  = "Task not found"
	msgInternalError = "Internal server error"
	msgRouteNotFound = "Route not found"
	msgUnhandled     = "Something went wrong!"
	msgRateLimited   = "Too many requests"
)

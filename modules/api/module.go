// Package api serves the task REST API over Fiber.
package api

import (
	"context"
	"fmt"
	"time"

	domain "github.com/example/task-color-api/domain/task"
	taskmod "github.com/example/task-color-api/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Config configures the HTTP server.
type Config struct {
	Port         int
	FrontendURL  string
	RateLimitMax int
	RateLimitWin time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Module provides the HTTP API as a mono module.
type Module struct {
	cfg        Config
	app        *fiber.App
	taskModule *taskmod.Module
	logger     types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the API module.
func NewModule(cfg Config, logger types.Logger) *Module {
	return &Module{
		cfg:    cfg,
		logger: logger.WithModule("api"),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "api"
}

// SetTaskModule sets the task module dependency. Its service is resolved at
// Start, so the task module must be registered first.
func (m *Module) SetTaskModule(tm *taskmod.Module) {
	m.taskModule = tm
}

// Start builds the Fiber app and starts listening.
func (m *Module) Start(_ context.Context) error {
	if m.taskModule == nil {
		return fmt.Errorf("task module not set")
	}
	service := m.taskModule.GetService()
	if service == nil {
		return fmt.Errorf("task service not available")
	}

	m.app = m.newApp(service)

	go func() {
		addr := fmt.Sprintf(":%d", m.cfg.Port)
		m.logger.Info("Starting HTTP server", "addr", addr)
		if err := m.app.Listen(addr); err != nil {
			m.logger.WithError(err).Error("HTTP server error")
		}
	}()

	m.logger.Info("Module started")
	return nil
}

// Stop shuts the HTTP server down, letting in-flight requests finish.
func (m *Module) Stop(_ context.Context) error {
	if m.app != nil {
		m.logger.Info("Shutting down HTTP server...")
		if err := m.app.Shutdown(); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}
	m.logger.Info("Module stopped")
	return nil
}

// Health reports whether the server has been started.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.app == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "server not started",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"port": m.cfg.Port,
		},
	}
}

// newApp creates the Fiber app with middleware and routes.
func (m *Module) newApp(service TaskService) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Task Color API",
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
		ReadTimeout:           m.cfg.ReadTimeout,
		WriteTimeout:          m.cfg.WriteTimeout,
		IdleTimeout:           m.cfg.IdleTimeout,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(m.corsMiddleware())

	m.setupRoutes(app, NewHandlers(service, m.logger))
	return app
}

// corsMiddleware allows any origin, or only FrontendURL with credentials when
// it is set.
func (m *Module) corsMiddleware() fiber.Handler {
	if m.cfg.FrontendURL == "" {
		return cors.New()
	}
	return cors.New(cors.Config{
		AllowOrigins:     m.cfg.FrontendURL,
		AllowCredentials: true,
	})
}

// setupRoutes configures all HTTP routes.
func (m *Module) setupRoutes(app *fiber.App, h *Handlers) {
	app.Get("/health", h.HealthCheck)

	api := app.Group("/api")
	if m.cfg.RateLimitMax > 0 {
		api.Use(limiter.New(limiter.Config{
			Max:        m.cfg.RateLimitMax,
			Expiration: m.cfg.RateLimitWin,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{Error: msgRateLimited})
			},
		}))
	}

	palette := h.service.Palette()
	validateCreate := func(body []byte) (domain.CreateTask, error) {
		return domain.ParseCreate(body, palette)
	}
	validateUpdate := func(body []byte) (domain.UpdateTask, error) {
		return domain.ParseUpdate(body, palette)
	}

	tasks := api.Group("/tasks")
	tasks.Get("/", h.ListTasks)
	tasks.Post("/", withInput(validateCreate, h.CreateTask))
	tasks.Put("/:id", withInput(validateUpdate, h.UpdateTask))
	tasks.Delete("/:id", h.DeleteTask)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: msgRouteNotFound})
	})
}

// errorHandler handles errors that escape route handlers, including recovered
// panics.
func (m *Module) errorHandler(c *fiber.Ctx, err error) error {
	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(ErrorResponse{Error: e.Message})
	}

	m.logger.WithError(err).Error("Unhandled request error", "method", c.Method(), "path", c.Path())
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: msgUnhandled})
}

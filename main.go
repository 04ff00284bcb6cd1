package main

import (
	"context"
	"log"
	"os"

	"github.com/example/task-color-api/config"
	apimod "github.com/example/task-color-api/modules/api"
	cachemod "github.com/example/task-color-api/modules/cache"
	taskmod "github.com/example/task-color-api/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const cachePrefix = "task:"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Println("=== Task Color API ===")
	log.Printf("Database: %s (%s)", cfg.DBDriver, cfg.DBDSN)
	log.Printf("HTTP Port: %d", cfg.Port)
	log.Printf("Colors: %s (default %s)", cfg.Palette, cfg.Palette.Default())

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create mono application: %v", err)
	}
	logger := app.Logger()

	if cfg.CacheEnabled() {
		log.Printf("Redis: %s (TTL %s)", cfg.RedisAddr, cfg.CacheTTL)
		cachePlugin := cachemod.NewPluginModule(cachemod.Config{
			RedisAddr: cfg.RedisAddr,
			Prefix:    cachePrefix,
			TTL:       cfg.CacheTTL,
		}, logger.WithModule(cachemod.Alias))
		if err := app.RegisterPlugin(cachePlugin, cachemod.Alias); err != nil {
			log.Fatalf("Failed to register cache plugin: %v", err)
		}
	}

	taskModule := taskmod.NewModule(taskmod.Config{
		Driver:  cfg.DBDriver,
		DSN:     cfg.DBDSN,
		Debug:   cfg.DBDebug,
		Palette: cfg.Palette,
	}, logger)

	apiModule := apimod.NewModule(apimod.Config{
		Port:         cfg.Port,
		FrontendURL:  cfg.FrontendURL,
		RateLimitMax: cfg.RateLimitMax,
		RateLimitWin: cfg.RateLimitWindow,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}, logger)
	apiModule.SetTaskModule(taskModule)

	// The api module reads the task service at Start, so task goes first.
	if err := app.Register(taskModule); err != nil {
		log.Fatalf("Failed to register task module: %v", err)
	}
	if err := app.Register(apiModule); err != nil {
		log.Fatalf("Failed to register api module: %v", err)
	}

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	log.Println("=== Application Started ===")
	log.Printf("API available at http://localhost:%d", cfg.Port)
	log.Println("Endpoints:")
	log.Println("  GET    /health         - Health check")
	log.Println("  GET    /api/tasks      - List tasks")
	log.Println("  POST   /api/tasks      - Create task")
	log.Println("  PUT    /api/tasks/:id  - Update task")
	log.Println("  DELETE /api/tasks/:id  - Delete task")
	log.Println("Press Ctrl+C to shutdown")

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	domain "github.com/example/task-color-api/domain/task"
	"github.com/joho/godotenv"
)

// Config holds all service settings.
type Config struct {
	Port        int
	FrontendURL string

	DBDriver string
	DBDSN    string
	DBDebug  bool

	RedisAddr string
	CacheTTL  time.Duration

	Palette domain.Palette

	RateLimitMax    int
	RateLimitWindow time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// CacheEnabled reports whether a Redis address was configured.
func (c Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// Load reads .env files when present, then the process environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	p := parser{}

	cfg := Config{
		Port:            p.getInt("PORT", 3000),
		FrontendURL:     strings.TrimSpace(os.Getenv("FRONTEND_URL")),
		DBDriver:        p.getString("DB_DRIVER", "sqlite"),
		DBDSN:           p.getString("DB_DSN", "tasks.db"),
		DBDebug:         p.getBool("DB_DEBUG", false),
		RedisAddr:       strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		CacheTTL:        p.getDuration("CACHE_TTL", 5*time.Minute),
		RateLimitMax:    p.getInt("RATE_LIMIT_MAX", 0),
		RateLimitWindow: p.getDuration("RATE_LIMIT_WINDOW", time.Minute),
		ReadTimeout:     p.getDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    p.getDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		IdleTimeout:     p.getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: p.getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}

	colors := domain.DefaultColors
	if raw := os.Getenv("TASK_COLORS"); strings.TrimSpace(raw) != "" {
		colors = strings.Split(raw, ",")
		for i := range colors {
			colors[i] = strings.TrimSpace(colors[i])
		}
	}
	palette, err := domain.NewPalette(colors, p.getString("TASK_DEFAULT_COLOR", domain.DefaultColor))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("TASK_COLORS: %w", err))
	}
	cfg.Palette = palette

	switch cfg.DBDriver {
	case "sqlite", "postgres":
	default:
		p.errs = append(p.errs, fmt.Errorf("DB_DRIVER: unsupported driver %q", cfg.DBDriver))
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		p.errs = append(p.errs, fmt.Errorf("PORT: %d is out of range", cfg.Port))
	}
	if cfg.RateLimitMax < 0 {
		p.errs = append(p.errs, errors.New("RATE_LIMIT_MAX: must not be negative"))
	}

	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parser collects every malformed variable instead of stopping at the first.
type parser struct {
	errs []error
}

func (p *parser) getString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func (p *parser) getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid boolean %q", key, v))
		return def
	}
	return b
}

func (p *parser) getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "FRONTEND_URL", "DB_DRIVER", "DB_DSN", "DB_DEBUG", "REDIS_ADDR",
	"CACHE_TTL", "TASK_COLORS", "TASK_DEFAULT_COLOR", "RATE_LIMIT_MAX",
	"RATE_LIMIT_WINDOW", "HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT",
	"HTTP_IDLE_TIMEOUT", "SHUTDOWN_TIMEOUT",
}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Empty(t, cfg.FrontendURL)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "tasks.db", cfg.DBDSN)
	assert.False(t, cfg.DBDebug)
	assert.False(t, cfg.CacheEnabled())
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 0, cfg.RateLimitMax)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "blue", cfg.Palette.Default())
	assert.Equal(t, "red, blue, green, yellow, purple, pink", cfg.Palette.String())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("FRONTEND_URL", "http://localhost:5173")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "host=db user=app dbname=tasks")
	t.Setenv("DB_DEBUG", "true")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("TASK_COLORS", "black, white ,gray")
	t.Setenv("TASK_DEFAULT_COLOR", "gray")
	t.Setenv("RATE_LIMIT_MAX", "100")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "http://localhost:5173", cfg.FrontendURL)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.True(t, cfg.DBDebug)
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Equal(t, []string{"black", "white", "gray"}, cfg.Palette.Names())
	assert.Equal(t, "gray", cfg.Palette.Default())
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		wants string
	}{
		{name: "port not a number", env: map[string]string{"PORT": "http"}, wants: "PORT"},
		{name: "port out of range", env: map[string]string{"PORT": "70000"}, wants: "PORT"},
		{name: "unknown driver", env: map[string]string{"DB_DRIVER": "mysql"}, wants: "DB_DRIVER"},
		{name: "bad duration", env: map[string]string{"CACHE_TTL": "soon"}, wants: "CACHE_TTL"},
		{name: "bad bool", env: map[string]string{"DB_DEBUG": "maybe"}, wants: "DB_DEBUG"},
		{name: "default not in palette", env: map[string]string{"TASK_COLORS": "red,green"}, wants: "TASK_COLORS"},
		{name: "duplicate color", env: map[string]string{"TASK_COLORS": "blue,blue"}, wants: "TASK_COLORS"},
		{name: "negative rate limit", env: map[string]string{"RATE_LIMIT_MAX": "-1"}, wants: "RATE_LIMIT_MAX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wants)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=4000\nREDIS_ADDR=localhost:6380\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "localhost:6380", cfg.RedisAddr)

	// godotenv does not override variables that are already set.
	t.Setenv("PORT", "5000")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port)
}

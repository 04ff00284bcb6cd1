package cache

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/storage/redis/v3"
)

// Alias is the name the plugin is registered under.
const Alias = "cache"

// Config configures the cache plugin.
type Config struct {
	RedisAddr string
	Prefix    string
	TTL       time.Duration
	PoolSize  int
}

// PluginModule owns the Redis connection behind the task list cache. Plugins
// start before and stop after regular modules, so the task module can read
// Lists() from its own Start.
type PluginModule struct {
	cfg       Config
	container types.ServiceContainer
	storage   *redis.Storage
	lists     ListCache
	logger    types.Logger
}

// Compile-time interface checks.
var (
	_ mono.PluginModule          = (*PluginModule)(nil)
	_ mono.HealthCheckableModule = (*PluginModule)(nil)
)

// NewPluginModule creates the cache plugin.
func NewPluginModule(cfg Config, logger types.Logger) *PluginModule {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 50
	}
	return &PluginModule{
		cfg:    cfg,
		logger: logger,
	}
}

// Name returns the module name.
func (m *PluginModule) Name() string {
	return Alias
}

// Start connects to Redis. gofiber/storage pings on connect and panics when
// the server is unreachable; the panic is turned into a start error.
func (m *PluginModule) Start(ctx context.Context) (err error) {
	host, port := parseRedisAddr(m.cfg.RedisAddr)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to connect to redis at %s: %v", m.cfg.RedisAddr, r)
		}
	}()

	m.storage = redis.New(redis.Config{
		Host:     host,
		Port:     port,
		PoolSize: m.cfg.PoolSize,
	})
	m.lists = NewListCache(m.storage.Conn(), m.storage.Close, m.cfg.Prefix, m.cfg.TTL, m.logger)

	// Start on a fresh generation so lists cached before a restart are never
	// served.
	gen, err := m.lists.Invalidate(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize list generation: %w", err)
	}

	m.logger.Info("Cache plugin started",
		"redis_addr", m.cfg.RedisAddr, "prefix", m.cfg.Prefix, "ttl", m.cfg.TTL.String(), "generation", gen)
	return nil
}

// Stop closes the Redis connection.
func (m *PluginModule) Stop(_ context.Context) error {
	if m.lists != nil {
		if err := m.lists.Close(); err != nil {
			m.logger.WithError(err).Error("Failed to close cache connection")
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}
	m.logger.Info("Cache plugin stopped")
	return nil
}

// SetContainer sets the service container for this plugin.
func (m *PluginModule) SetContainer(container types.ServiceContainer) {
	m.container = container
}

// Container returns the service container for this plugin.
func (m *PluginModule) Container() types.ServiceContainer {
	return m.container
}

// Lists returns the task list cache. It is nil before Start.
func (m *PluginModule) Lists() ListCache {
	return m.lists
}

// Health pings Redis and reports the current list generation.
func (m *PluginModule) Health(ctx context.Context) mono.HealthStatus {
	if m.storage == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "storage not initialized",
		}
	}

	if err := m.storage.Conn().Ping(ctx).Err(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("redis ping failed: %v", err),
		}
	}

	details := map[string]any{
		"redis_addr": m.cfg.RedisAddr,
		"prefix":     m.cfg.Prefix,
		"ttl":        m.cfg.TTL.String(),
	}
	if gen, _, _, err := m.lists.Load(ctx); err == nil {
		details["generation"] = gen
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: details,
	}
}

// parseRedisAddr splits "host:port", defaulting to 127.0.0.1:6379.
func parseRedisAddr(addr string) (string, int) {
	const defaultHost = "127.0.0.1"
	const defaultPort = 6379

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return defaultHost, defaultPort
	}
	if host == "" {
		host = defaultHost
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = defaultPort
	}
	return host, port
}

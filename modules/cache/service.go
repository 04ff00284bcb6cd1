// Package cache keeps the task list in Redis, keyed by a write generation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	domain "github.com/example/task-color-api/domain/task"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/redis/go-redis/v9"
)

// ListCache caches the full task list. Every task write advances a shared
// generation counter, and a list is only ever read back under the generation
// that was current before it was loaded from the store. A list read that
// raced a write lands under a generation nobody asks for again.
type ListCache interface {
	// Load returns the current generation and the list cached for it.
	Load(ctx context.Context) (gen int64, tasks []domain.Task, found bool, err error)

	// Store caches tasks as the list of generation gen. It skips the write
	// when gen is no longer current.
	Store(ctx context.Context, gen int64, tasks []domain.Task) error

	// Invalidate advances the generation after a task write.
	Invalidate(ctx context.Context) (int64, error)

	// Close closes the underlying connection.
	Close() error
}

type listCache struct {
	client redis.UniversalClient
	closer func() error
	prefix string
	ttl    time.Duration
	logger types.Logger
}

// NewListCache creates a ListCache on client. Keys are namespaced with prefix.
func NewListCache(client redis.UniversalClient, closer func() error, prefix string, ttl time.Duration, logger types.Logger) ListCache {
	return &listCache{
		client: client,
		closer: closer,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *listCache) genKey() string {
	return c.prefix + "list:gen"
}

func (c *listCache) listKey(gen int64) string {
	return c.prefix + "list:" + strconv.FormatInt(gen, 10)
}

// generation reads the counter. A missing counter is seeded from the clock so
// a lost key never restarts at a generation that still has a cached list.
func (c *listCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey()).Int64()
	if err == nil {
		return gen, nil
	}
	if !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("cache generation read error: %w", err)
	}

	if err := c.client.SetNX(ctx, c.genKey(), time.Now().UnixNano(), 0).Err(); err != nil {
		return 0, fmt.Errorf("cache generation seed error: %w", err)
	}
	gen, err = c.client.Get(ctx, c.genKey()).Int64()
	if err != nil {
		return 0, fmt.Errorf("cache generation read error: %w", err)
	}
	return gen, nil
}

// Load returns the cached list of the current generation.
func (c *listCache) Load(ctx context.Context) (int64, []domain.Task, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return 0, nil, false, err
	}

	data, err := c.client.Get(ctx, c.listKey(gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("Cache miss", "generation", gen)
		return gen, nil, false, nil
	}
	if err != nil {
		return gen, nil, false, fmt.Errorf("cache get error: %w", err)
	}

	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return gen, nil, false, fmt.Errorf("cache unmarshal error: %w", err)
	}

	c.logger.Debug("Cache hit", "generation", gen, "tasks", len(tasks))
	return gen, tasks, true, nil
}

// Store caches tasks for gen unless a write has moved the generation on.
func (c *listCache) Store(ctx context.Context, gen int64, tasks []domain.Task) error {
	current, err := c.generation(ctx)
	if err != nil {
		return err
	}
	if current != gen {
		c.logger.Debug("Skipping stale list", "generation", gen, "current", current)
		return nil
	}

	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	if err := c.client.Set(ctx, c.listKey(gen), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

// Invalidate bumps the generation. Lists cached under older generations are
// left to expire.
func (c *listCache) Invalidate(ctx context.Context) (int64, error) {
	// INCR on a missing key would restart at 1.
	if _, err := c.generation(ctx); err != nil {
		return 0, err
	}
	gen, err := c.client.Incr(ctx, c.genKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("cache invalidate error: %w", err)
	}
	return gen, nil
}

// Close closes the underlying connection.
func (c *listCache) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

package task

import (
	"context"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	domain "github.com/example/task-color-api/domain/task"
	"github.com/example/task-color-api/events"
	"github.com/example/task-color-api/modules/cache"
	"github.com/go-monolith/mono/pkg/types"
	"golang.org/x/sync/singleflight"
)

// EventPublisher publishes task lifecycle events.
type EventPublisher interface {
	TaskCreated(e events.TaskCreatedEvent) error
	TaskUpdated(e events.TaskUpdatedEvent) error
	TaskDeleted(e events.TaskDeletedEvent) error
}

// Service provides task operations on top of a domain.Store, with an optional
// list cache and best-effort lifecycle events.
type Service struct {
	store     domain.Store
	palette   domain.Palette
	lists     cache.ListCache
	publisher EventPublisher
	logger    types.Logger

	// writes counts completed writes in this process. Concurrent list loads
	// are only shared within one value of it.
	writes  atomic.Int64
	sfGroup singleflight.Group
}

// NewService creates a task service. lists and publisher may be nil, which
// disables caching and event publishing respectively.
func NewService(store domain.Store, palette domain.Palette, lists cache.ListCache, publisher EventPublisher, logger types.Logger) *Service {
	return &Service{
		store:     store,
		palette:   palette,
		lists:     lists,
		publisher: publisher,
		logger:    logger,
	}
}

// Palette returns the colors tasks may carry.
func (s *Service) Palette() domain.Palette {
	return s.palette
}

// List returns all tasks, most recently created first. A list call that
// starts after a write has returned never sees data from before that write.
func (s *Service) List(ctx context.Context) ([]domain.Task, error) {
	key := "list:" + strconv.FormatInt(s.writes.Load(), 10)

	// The load is shared, so one caller's cancellation must not fail the rest.
	shared := context.WithoutCancel(ctx)
	val, err, _ := s.sfGroup.Do(key, func() (any, error) {
		return s.loadList(shared)
	})
	if err != nil {
		return nil, err
	}
	return val.([]domain.Task), nil
}

func (s *Service) loadList(ctx context.Context) ([]domain.Task, error) {
	if s.lists == nil {
		return s.store.FindAll(ctx)
	}

	gen, cached, found, err := s.lists.Load(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Task list cache read failed")
		return s.store.FindAll(ctx)
	}
	if found {
		return cached, nil
	}

	tasks, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.lists.Store(ctx, gen, tasks); err != nil {
		s.logger.WithError(err).Warn("Task list cache write failed")
	}
	return tasks, nil
}

// Create stores a validated task. New tasks start not completed.
func (s *Service) Create(ctx context.Context, in domain.CreateTask) (*domain.Task, error) {
	t := &domain.Task{
		Title: in.Title,
		Color: in.Color,
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}

	s.invalidateList(ctx)
	s.logger.Info("Task created", "task_id", t.ID, "color", t.Color)

	if s.publisher != nil {
		err := s.publisher.TaskCreated(events.TaskCreatedEvent{
			TaskID:    t.ID,
			Title:     t.Title,
			Color:     t.Color,
			CreatedAt: t.CreatedAt,
		})
		if err != nil {
			s.logger.WithError(err).Warn("Failed to publish TaskCreated event", "task_id", t.ID)
		}
	}
	return t, nil
}

// Update applies a validated partial update. Returns domain.ErrNotFound when
// no task has the given ID.
func (s *Service) Update(ctx context.Context, id string, upd domain.UpdateTask) (*domain.Task, error) {
	t, err := s.store.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	if upd.Empty() {
		return t, nil
	}

	s.invalidateList(ctx)
	s.logger.Info("Task updated", "task_id", t.ID)

	if s.publisher != nil {
		fields := make([]string, 0, 3)
		for name := range upd.Changes() {
			fields = append(fields, name)
		}
		sort.Strings(fields)

		err := s.publisher.TaskUpdated(events.TaskUpdatedEvent{
			TaskID:    t.ID,
			Fields:    fields,
			Completed: t.Completed,
			UpdatedAt: t.UpdatedAt,
		})
		if err != nil {
			s.logger.WithError(err).Warn("Failed to publish TaskUpdated event", "task_id", t.ID)
		}
	}
	return t, nil
}

// Delete removes a task. Returns domain.ErrNotFound when no task has the given
// ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateList(ctx)
	s.logger.Info("Task deleted", "task_id", id)

	if s.publisher != nil {
		err := s.publisher.TaskDeleted(events.TaskDeletedEvent{
			TaskID:    id,
			DeletedAt: time.Now().UTC(),
		})
		if err != nil {
			s.logger.WithError(err).Warn("Failed to publish TaskDeleted event", "task_id", id)
		}
	}
	return nil
}

// invalidateList must run after the store write has committed.
func (s *Service) invalidateList(ctx context.Context) {
	s.writes.Add(1)
	if s.lists == nil {
		return
	}
	if _, err := s.lists.Invalidate(ctx); err != nil {
		s.logger.WithError(err).Error("Failed to invalidate task list cache")
	}
}

package task

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a task is not found.
var ErrNotFound = errors.New("task not found")

// Store is the persistence contract used by the task service.
type Store interface {
	FindAll(ctx context.Context) ([]Task, error)
	FindByID(ctx context.Context, id string) (*Task, error)
	Create(ctx context.Context, task *Task) error
	Update(ctx context.Context, id string, upd UpdateTask) (*Task, error)
	Delete(ctx context.Context, id string) error
}

// Repository provides access to task storage.
type Repository struct {
	db *gorm.DB
}

// Compile-time interface check.
var _ Store = (*Repository)(nil)

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates the tasks table.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&Task{})
}

// FindAll retrieves all tasks, most recently created first.
func (r *Repository) FindAll(ctx context.Context) ([]Task, error) {
	tasks := make([]Task, 0)
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	return tasks, nil
}

// FindByID retrieves a task by its ID.
func (r *Repository) FindByID(ctx context.Context, id string) (*Task, error) {
	return findByID(r.db.WithContext(ctx), id)
}

// Create saves a new task. ID and timestamps are filled in by GORM.
func (r *Repository) Create(ctx context.Context, task *Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// Update applies upd to the task with the given ID and returns the result.
// The write is conditional on the row existing; zero affected rows yields
// ErrNotFound. An empty update only checks existence.
func (r *Repository) Update(ctx context.Context, id string, upd UpdateTask) (*Task, error) {
	if upd.Empty() {
		return r.FindByID(ctx, id)
	}

	var updated *Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Task{}).Where("id = ?", id).Updates(upd.Changes())
		if err := result.Error; err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		t, err := findByID(tx, id)
		if err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a task by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&Task{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func findByID(db *gorm.DB, id string) (*Task, error) {
	var task Task
	if err := db.First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

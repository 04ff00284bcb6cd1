package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	// Every connection to ":memory:" is a separate database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, NewRepository(db).Migrate(), "failed to migrate test database")
	return db
}

func TestRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first := &Task{Title: "Buy milk", Color: "blue"}
	require.NoError(t, repo.Create(ctx, first))

	second := &Task{Title: "Walk dog", Color: "red"}
	require.NoError(t, repo.Create(ctx, second))

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, first.CreatedAt.IsZero())
	assert.False(t, first.UpdatedAt.IsZero())

	var found Task
	require.NoError(t, db.First(&found, "id = ?", first.ID).Error)
	assert.Equal(t, "Buy milk", found.Title)
	assert.Equal(t, "blue", found.Color)
	assert.False(t, found.Completed)
}

func TestRepository_FindByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	task := &Task{Title: "FindByID", Color: "green"}
	require.NoError(t, db.Create(task).Error)

	t.Run("existing task", func(t *testing.T) {
		found, err := repo.FindByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.ID, found.ID)
		assert.Equal(t, "FindByID", found.Title)
	})

	t.Run("non-existent task", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "non-existent-id")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRepository_FindAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("empty database", func(t *testing.T) {
		tasks, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	})

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, title := range []string{"T1", "T2", "T3"} {
		task := &Task{
			Title:     title,
			Color:     "blue",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(task).Error)
	}

	t.Run("newest first", func(t *testing.T) {
		tasks, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 3)
		assert.Equal(t, "T3", tasks[0].Title)
		assert.Equal(t, "T2", tasks[1].Title)
		assert.Equal(t, "T1", tasks[2].Title)
	})
}

func TestRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	task := &Task{Title: "Original", Color: "blue"}
	require.NoError(t, db.Create(task).Error)

	t.Run("partial update keeps other fields", func(t *testing.T) {
		done := true
		updated, err := repo.Update(ctx, task.ID, UpdateTask{Completed: &done})
		require.NoError(t, err)

		assert.True(t, updated.Completed)
		assert.Equal(t, "Original", updated.Title)
		assert.Equal(t, "blue", updated.Color)
		assert.Equal(t, task.ID, updated.ID)
	})

	t.Run("repeating an update is idempotent", func(t *testing.T) {
		title := "Renamed"
		color := "purple"
		upd := UpdateTask{Title: &title, Color: &color}

		first, err := repo.Update(ctx, task.ID, upd)
		require.NoError(t, err)
		second, err := repo.Update(ctx, task.ID, upd)
		require.NoError(t, err)

		assert.Equal(t, first.Title, second.Title)
		assert.Equal(t, first.Color, second.Color)
		assert.Equal(t, first.Completed, second.Completed)
		assert.Equal(t, "Renamed", second.Title)
	})

	t.Run("empty update returns current state", func(t *testing.T) {
		current, err := repo.Update(ctx, task.ID, UpdateTask{})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", current.Title)
	})

	t.Run("non-existent task", func(t *testing.T) {
		done := true
		_, err := repo.Update(ctx, "non-existent-id", UpdateTask{Completed: &done})
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = repo.Update(ctx, "non-existent-id", UpdateTask{})
		assert.ErrorIs(t, err, ErrNotFound)

		var count int64
		require.NoError(t, db.Model(&Task{}).Count(&count).Error)
		assert.Equal(t, int64(1), count, "update must not create rows")
	})
}

func TestRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	task := &Task{Title: "To Be Deleted", Color: "pink"}
	require.NoError(t, db.Create(task).Error)

	t.Run("delete existing task", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, task.ID))

		_, err := repo.FindByID(ctx, task.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		var count int64
		require.NoError(t, db.Model(&Task{}).Count(&count).Error)
		assert.Zero(t, count, "delete must remove the row")
	})

	t.Run("delete twice reports not found", func(t *testing.T) {
		assert.ErrorIs(t, repo.Delete(ctx, task.ID), ErrNotFound)
	})
}

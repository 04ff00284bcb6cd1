// Package task provides the task entity, its color palette, request
// validation and the GORM-backed store.
package task

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task represents a to-do item.
type Task struct {
	ID        string    `gorm:"primarykey;size:36" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Color     string    `gorm:"size:32;not null" json:"color"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the table name for Task model.
func (Task) TableName() string {
	return "tasks"
}

// BeforeCreate assigns the task ID on insert.
func (t *Task) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// CreateTask is the validated input of a create request.
type CreateTask struct {
	Title string `json:"title"`
	Color string `json:"color"`
}

// UpdateTask is the validated input of a partial update. Nil fields are left
// untouched.
type UpdateTask struct {
	Title     *string `json:"title,omitempty"`
	Color     *string `json:"color,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u UpdateTask) Empty() bool {
	return u.Title == nil && u.Color == nil && u.Completed == nil
}

// Changes returns the column assignments for the update.
func (u UpdateTask) Changes() map[string]any {
	changes := make(map[string]any, 3)
	if u.Title != nil {
		changes["title"] = *u.Title
	}
	if u.Color != nil {
		changes["color"] = *u.Color
	}
	if u.Completed != nil {
		changes["completed"] = *u.Completed
	}
	return changes
}

// Package taskmanager is a small Postgres-backed to-do list for the
// outreach team, exposed through the dashboard API.
package taskmanager

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a task id does not exist.
var ErrNotFound = errors.New("task not found")

// Task is one to-do item.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// ValidStatus reports whether s is a known task status.
func ValidStatus(s string) bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusDone
}

// ValidPriority reports whether p is a known task priority.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityNormal || p == PriorityHigh
}

// CreateInput is the payload for creating a task. Status and priority
// default to "todo" and "normal".
type CreateInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

// Validate normalizes defaults and checks the input.
func (in *CreateInput) Validate() error {
	if in.Title == "" {
		return errors.New("title is required")
	}
	if in.Status == "" {
		in.Status = StatusTodo
	}
	if in.Priority == "" {
		in.Priority = PriorityNormal
	}
	if !ValidStatus(in.Status) {
		return errors.New("invalid status")
	}
	if !ValidPriority(in.Priority) {
		return errors.New("invalid priority")
	}
	return nil
}

// UpdateInput carries partial task updates; nil fields stay unchanged.
type UpdateInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

// Validate checks the fields that are present.
func (in *UpdateInput) Validate() error {
	if in.Title != nil && *in.Title == "" {
		return errors.New("title cannot be empty")
	}
	if in.Status != nil && !ValidStatus(*in.Status) {
		return errors.New("invalid status")
	}
	if in.Priority != nil && !ValidPriority(*in.Priority) {
		return errors.New("invalid priority")
	}
	return nil
}

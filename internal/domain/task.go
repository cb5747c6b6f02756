package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Field limits for tasks.
const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 5000
)

// Status is a workflow state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Statuses lists every known workflow state.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// Valid reports whether s is a known workflow state.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ParseStatus converts a raw value into a Status. Unknown values wrap ErrInvalidState.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidState, raw)
	}
	return s, nil
}

// Priority ranks a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Task is a unit of work owned by one user and optionally assigned to another.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	OwnerID     int64     `json:"owner_id"`
	AssigneeID  *int64    `json:"assignee_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTask builds a todo task owned by ownerID. An empty priority means medium.
// The ID is assigned by the store.
func NewTask(ownerID int64, title string, description *string, priority Priority, assigneeID *int64) (*Task, error) {
	if priority == "" {
		priority = PriorityMedium
	}
	now := time.Now().UTC()
	task := &Task{
		Title:       strings.TrimSpace(title),
		Description: description,
		Status:      StatusTodo,
		Priority:    priority,
		OwnerID:     ownerID,
		AssigneeID:  assigneeID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks the task's fields. A status outside the workflow set wraps
// ErrInvalidState rather than ErrValidation.
func (t *Task) Validate() error {
	if t.OwnerID <= 0 {
		return NewValidationError("owner_id", "must be a positive id", nil)
	}
	if err := ValidateTitle(t.Title); err != nil {
		return err
	}
	if err := ValidateDescription(t.Description); err != nil {
		return err
	}
	if !t.Priority.Valid() {
		return NewValidationError("priority", fmt.Sprintf("unknown priority %q", t.Priority), nil)
	}
	if t.AssigneeID != nil && *t.AssigneeID <= 0 {
		return NewValidationError("assignee_id", "must be a positive id", nil)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidState, t.Status)
	}
	return nil
}

// ValidateTitle enforces the title length bounds.
func ValidateTitle(title string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	if n == 0 {
		return NewValidationError("title", "cannot be empty", nil)
	}
	if n > MaxTitleLength {
		return NewValidationError("title", fmt.Sprintf("must be at most %d characters", MaxTitleLength), nil)
	}
	return nil
}

// ValidateDescription enforces the description length bound. Nil is allowed.
func ValidateDescription(description *string) error {
	if description != nil && utf8.RuneCountInString(*description) > MaxDescriptionLength {
		return NewValidationError(
			"description",
			fmt.Sprintf("must be at most %d characters", MaxDescriptionLength),
			nil,
		)
	}
	return nil
}

// Clone returns a deep copy of t.
func (t *Task) Clone() *Task {
	c := *t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	if t.AssigneeID != nil {
		a := *t.AssigneeID
		c.AssigneeID = &a
	}
	return &c
}

// TaskView is a task together with the identities it references, as returned
// by read operations.
type TaskView struct {
	Task
	Owner    UserBrief  `json:"owner"`
	Assignee *UserBrief `json:"assignee"`
}

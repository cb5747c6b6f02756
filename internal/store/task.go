package store

import (
	"context"

	"github.com/phrazzld/task-tracker-api/internal/domain"
)

// TaskStore defines the interface for task persistence.
type TaskStore interface {
	// Create inserts task and sets its ID. Returns ErrInvalidEntity when the
	// owner or assignee does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID returns a task. Returns ErrTaskNotFound if it does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// GetByIDForUpdate is GetByID with the row locked until the surrounding
	// transaction ends. Outside InTx it behaves like GetByID.
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Task, error)

	// GetView returns a task with owner and assignee identities.
	GetView(ctx context.Context, id int64) (*domain.TaskView, error)

	// Update writes every mutable column of task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task. Returns ErrTaskNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error

	// List returns one page of tasks matching filter, with owner and assignee
	// identities loaded in the same round trip.
	List(ctx context.Context, filter TaskFilter) (*TaskPage, error)

	// InTx runs fn against a TaskStore bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	// Calling InTx on a store already bound to a transaction reuses it.
	InTx(ctx context.Context, fn func(ctx context.Context, tasks TaskStore) error) error
}

// TaskFilter selects tasks for List. Nil fields do not filter.
type TaskFilter struct {
	Status     *domain.Status
	Priority   *domain.Priority
	AssigneeID *int64
	OwnerID    *int64
	Search     string
	Page       int
	PerPage    int
}

// Offset is the number of rows skipped before the requested page.
func (f TaskFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PerPage
}

// TaskPage is one page of List results.
type TaskPage struct {
	Items []*domain.TaskView
	Total int
}

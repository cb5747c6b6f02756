package workflow

import (
	"fmt"

	"github.com/phrazzld/task-tracker-api/internal/domain"
)

// Decision is the outcome of a permission check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Err converts a denied Decision into an error wrapping domain.ErrPermissionDenied.
// Allowed decisions return nil.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrPermissionDenied, d.Reason)
}

// Check decides whether actorID may mutate task. Only the owner and the
// current assignee are allowed.
func Check(task *domain.Task, actorID int64) Decision {
	if task == nil {
		return Decision{Reason: "task is nil"}
	}
	if actorID == task.OwnerID {
		return Decision{Allowed: true}
	}
	if task.AssigneeID != nil && actorID == *task.AssigneeID {
		return Decision{Allowed: true}
	}
	return Decision{
		Reason: fmt.Sprintf("user %d is neither owner nor assignee of task %d", actorID, task.ID),
	}
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/task-tracker-api/internal/config"
	"github.com/phrazzld/task-tracker-api/internal/domain"
	"github.com/phrazzld/task-tracker-api/internal/domain/workflow"
	"github.com/phrazzld/task-tracker-api/internal/platform/logger"
	"github.com/phrazzld/task-tracker-api/internal/store"
)

// CreateTaskParams holds the caller-supplied fields of a new task.
type CreateTaskParams struct {
	Title       string
	Description *string
	Priority    domain.Priority
	AssigneeID  *int64
}

// UpdateTaskParams is a partial update. Nil fields are left unchanged.
// Status only changes through Transition.
type UpdateTaskParams struct {
	Title       *string
	Description *string
	Priority    *domain.Priority
}

// TaskService provides task operations scoped by ownership and assignment.
type TaskService interface {
	// Create stores a new todo task owned by actorID.
	Create(ctx context.Context, actorID int64, params CreateTaskParams) (*domain.TaskView, error)

	// Get returns a task with its owner and assignee.
	Get(ctx context.Context, taskID int64) (*domain.TaskView, error)

	// List returns one page of tasks matching filter.
	List(ctx context.Context, filter store.TaskFilter) (*store.TaskPage, error)

	// Update applies params to a task the actor owns or is assigned to.
	Update(ctx context.Context, taskID, actorID int64, params UpdateTaskParams) (*domain.TaskView, error)

	// Delete removes a task the actor owns or is assigned to.
	Delete(ctx context.Context, taskID, actorID int64) error

	// ForceDelete removes a task without the pre-delete audit record. It is
	// authorized exactly like Delete.
	ForceDelete(ctx context.Context, taskID, actorID int64) error

	// Assign sets or, with a nil assigneeID, clears the task's assignee.
	Assign(ctx context.Context, taskID, actorID int64, assigneeID *int64) (*domain.TaskView, error)

	// Transition moves a task to target if the workflow allows it.
	Transition(ctx context.Context, taskID, actorID int64, target domain.Status) (*domain.TaskView, error)

	// BulkTransition applies Transition to every id, one transaction per id,
	// and reports each outcome in input order.
	BulkTransition(ctx context.Context, actorID int64, taskIDs []int64, target domain.Status) (*BulkResult, error)
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	tasks  store.TaskStore
	users  store.UserStore
	bulk   config.BulkConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	tasks store.TaskStore,
	users store.UserStore,
	bulk config.BulkConfig,
	logger *slog.Logger,
) (TaskService, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if bulk.MaxItems <= 0 {
		bulk.MaxItems = 100
	}
	if bulk.Concurrency <= 0 {
		bulk.Concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:  tasks,
		users:  users,
		bulk:   bulk,
		logger: logger.With(slog.String("component", "task_service")),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Create implements TaskService.Create
func (s *taskServiceImpl) Create(
	ctx context.Context,
	actorID int64,
	params CreateTaskParams,
) (*domain.TaskView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(actorID, params.Title, params.Description, params.Priority, params.AssigneeID)
	if err != nil {
		return nil, NewTaskServiceError("create", "invalid task", err)
	}

	if params.AssigneeID != nil {
		if err := s.requireUser(ctx, *params.AssigneeID); err != nil {
			return nil, NewTaskServiceError("create", "assignee lookup failed", err)
		}
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		log.Error("failed to save task",
			slog.String("error", err.Error()),
			slog.Int64("owner_id", actorID))
		return nil, NewTaskServiceError("create", "failed to save task", err)
	}

	log.Info("task created",
		slog.Int64("task_id", task.ID),
		slog.Int64("owner_id", actorID))

	return s.view(ctx, "create", task.ID)
}

// Get implements TaskService.Get
func (s *taskServiceImpl) Get(ctx context.Context, taskID int64) (*domain.TaskView, error) {
	return s.view(ctx, "get", taskID)
}

// List implements TaskService.List
func (s *taskServiceImpl) List(ctx context.Context, filter store.TaskFilter) (*store.TaskPage, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	page, err := s.tasks.List(ctx, filter)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks",
			slog.String("error", err.Error()))
		return nil, NewTaskServiceError("list", "failed to list tasks", err)
	}
	return page, nil
}

// Update implements TaskService.Update
func (s *taskServiceImpl) Update(
	ctx context.Context,
	taskID, actorID int64,
	params UpdateTaskParams,
) (*domain.TaskView, error) {
	err := s.mutate(ctx, "update", taskID, actorID, func(ctx context.Context, tx store.TaskStore, task *domain.Task) error {
		if params.Title != nil {
			task.Title = strings.TrimSpace(*params.Title)
		}
		if params.Description != nil {
			task.Description = params.Description
		}
		if params.Priority != nil {
			task.Priority = *params.Priority
		}
		if err := task.Validate(); err != nil {
			return err
		}
		task.UpdatedAt = s.now()
		return tx.Update(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, "update", taskID)
}

// Delete implements TaskService.Delete
func (s *taskServiceImpl) Delete(ctx context.Context, taskID, actorID int64) error {
	return s.remove(ctx, "delete", taskID, actorID, true)
}

// ForceDelete implements TaskService.ForceDelete
func (s *taskServiceImpl) ForceDelete(ctx context.Context, taskID, actorID int64) error {
	return s.remove(ctx, "force_delete", taskID, actorID, false)
}

func (s *taskServiceImpl) remove(ctx context.Context, op string, taskID, actorID int64, audit bool) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.mutate(ctx, op, taskID, actorID, func(ctx context.Context, tx store.TaskStore, task *domain.Task) error {
		if audit {
			log.Info("deleting task",
				slog.Int64("task_id", task.ID),
				slog.Int64("owner_id", task.OwnerID),
				slog.String("status", string(task.Status)),
				slog.Int64("actor_id", actorID))
		}
		return tx.Delete(ctx, task.ID)
	})
	if err != nil {
		return err
	}

	log.Debug("task deleted", slog.Int64("task_id", taskID), slog.String("operation", op))
	return nil
}

// Assign implements TaskService.Assign
func (s *taskServiceImpl) Assign(
	ctx context.Context,
	taskID, actorID int64,
	assigneeID *int64,
) (*domain.TaskView, error) {
	err := s.mutate(ctx, "assign", taskID, actorID, func(ctx context.Context, tx store.TaskStore, task *domain.Task) error {
		if assigneeID != nil {
			if err := s.requireUser(ctx, *assigneeID); err != nil {
				return err
			}
		}
		task.AssigneeID = assigneeID
		task.UpdatedAt = s.now()
		return tx.Update(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, "assign", taskID)
}

// Transition implements TaskService.Transition
func (s *taskServiceImpl) Transition(
	ctx context.Context,
	taskID, actorID int64,
	target domain.Status,
) (*domain.TaskView, error) {
	if !target.Valid() {
		return nil, NewTaskServiceError("transition", "invalid target status",
			domain.NewValidationError("status", "unknown status "+string(target), nil))
	}

	previous, err := s.transition(ctx, taskID, actorID, target)
	if err != nil {
		return nil, s.fail(ctx, "transition", taskID, actorID, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task transitioned",
		slog.Int64("task_id", taskID),
		slog.String("from", string(previous)),
		slog.String("to", string(target)))

	return s.view(ctx, "transition", taskID)
}

// transition performs the locked check-then-write for one task and reports
// the status it found, which is empty when the task could not be loaded.
func (s *taskServiceImpl) transition(
	ctx context.Context,
	taskID, actorID int64,
	target domain.Status,
) (domain.Status, error) {
	var previous domain.Status
	err := s.tasks.InTx(ctx, func(ctx context.Context, tx store.TaskStore) error {
		task, err := tx.GetByIDForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		previous = task.Status

		if err := workflow.Check(task, actorID).Err(); err != nil {
			return err
		}
		if err := workflow.Enforce(task.Status, target); err != nil {
			return err
		}

		task.Status = target
		task.UpdatedAt = s.now()
		return tx.Update(ctx, task)
	})
	return previous, err
}

// mutate loads the task with its row locked, checks that actorID may change
// it, and runs apply in the same transaction.
func (s *taskServiceImpl) mutate(
	ctx context.Context,
	op string,
	taskID, actorID int64,
	apply func(ctx context.Context, tx store.TaskStore, task *domain.Task) error,
) error {
	err := s.tasks.InTx(ctx, func(ctx context.Context, tx store.TaskStore) error {
		task, err := tx.GetByIDForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		if err := workflow.Check(task, actorID).Err(); err != nil {
			return err
		}
		return apply(ctx, tx, task)
	})
	if err != nil {
		return s.fail(ctx, op, taskID, actorID, err)
	}
	return nil
}

// fail logs err at a level matching its kind and wraps it for the caller.
func (s *taskServiceImpl) fail(ctx context.Context, op string, taskID, actorID int64, err error) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	attrs := []any{
		slog.String("operation", op),
		slog.Int64("task_id", taskID),
		slog.Int64("actor_id", actorID),
		slog.String("error", err.Error()),
	}

	switch {
	case errors.Is(err, domain.ErrInvalidState):
		log.Error("task data violates workflow invariant", attrs...)
		return NewTaskServiceError(op, "stored task is in an invalid state", err)
	case store.IsNotFoundError(err):
		log.Debug("task operation target not found", attrs...)
		return NewTaskServiceError(op, "not found", err)
	case errors.Is(err, domain.ErrPermissionDenied):
		log.Warn("task operation denied", attrs...)
		return NewTaskServiceError(op, "permission denied", err)
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrValidation):
		log.Debug("task operation rejected", attrs...)
		return NewTaskServiceError(op, "rejected", err)
	default:
		log.Error("task operation failed", attrs...)
		return NewTaskServiceError(op, "failed", err)
	}
}

func (s *taskServiceImpl) requireUser(ctx context.Context, userID int64) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	return nil
}

func (s *taskServiceImpl) view(ctx context.Context, op string, taskID int64) (*domain.TaskView, error) {
	view, err := s.tasks.GetView(ctx, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewTaskServiceError(op, "task not found", err)
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load task",
			slog.Int64("task_id", taskID),
			slog.String("error", err.Error()))
		return nil, NewTaskServiceError(op, "failed to load task", err)
	}
	return view, nil
}
